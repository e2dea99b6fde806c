package recipe

import (
	"bytes"
	"encoding/json"
)

// UnmarshalJSON accepts either a bare string or {"step": "..."}.
func (in *Instruction) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*in = Instruction{Step: s}
		return nil
	}
	type plain Instruction
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = Instruction(p)
	return nil
}

// UnmarshalJSON accepts either a bare string or {"name": "..."}.
func (in *Ingredient) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*in = Ingredient{Name: s}
		return nil
	}
	type plain Ingredient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = Ingredient(p)
	return nil
}

func bareString(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}
