package domain

import "encoding/json"

// The persisted records are forward compatible: keys written by newer
// versions of the app must survive a load/save round trip unchanged.
// Each record type therefore captures unrecognized keys into an Extra
// side-mapping on decode and merges them back on encode. Known fields
// always win over a stale extra of the same name.

// captureExtras returns every key of data that the marshaled known
// form does not produce.
func captureExtras(data []byte, known any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var knownKeys map[string]json.RawMessage
	if err := json.Unmarshal(base, &knownKeys); err != nil {
		return nil, err
	}
	for k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// marshalWithExtras marshals the known form and merges the extras in,
// without letting an extra shadow a known key.
func marshalWithExtras(known any, extras map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extras {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes a ledger entry, accepting the legacy
// "ingredient_id" key as a fallback for "mehl_id".
func (u *IngredientUsage) UnmarshalJSON(data []byte) error {
	type alias IngredientUsage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = IngredientUsage(a)
	if u.IngredientID == "" {
		var legacy struct {
			IngredientID string `json:"ingredient_id"`
		}
		if err := json.Unmarshal(data, &legacy); err == nil {
			u.IngredientID = legacy.IngredientID
		}
	}
	extras, err := captureExtras(data, alias(*u))
	if err != nil {
		return err
	}
	// The legacy key is rewritten as mehl_id, not carried along.
	delete(extras, "ingredient_id")
	if len(extras) == 0 {
		extras = nil
	}
	u.Extra = extras
	return nil
}

// MarshalJSON encodes a ledger entry with its extras merged back.
func (u IngredientUsage) MarshalJSON() ([]byte, error) {
	type alias IngredientUsage
	return marshalWithExtras(alias(u), u.Extra)
}

func (s *StepRun) UnmarshalJSON(data []byte) error {
	type alias StepRun
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = StepRun(a)
	extras, err := captureExtras(data, alias(*s))
	if err != nil {
		return err
	}
	s.Extra = extras
	return nil
}

func (s StepRun) MarshalJSON() ([]byte, error) {
	type alias StepRun
	return marshalWithExtras(alias(s), s.Extra)
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	type alias Outcome
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Outcome(a)
	extras, err := captureExtras(data, alias(*o))
	if err != nil {
		return err
	}
	o.Extra = extras
	return nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	return marshalWithExtras(alias(o), o.Extra)
}

func (p *Process) UnmarshalJSON(data []byte) error {
	type alias Process
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Process(a)
	if p.Status == "" {
		p.Status = StatusPlanned
	}
	if p.ScaleFactor == 0 {
		p.ScaleFactor = 1.0
	}
	extras, err := captureExtras(data, alias(*p))
	if err != nil {
		return err
	}
	p.Extra = extras
	return nil
}

func (p Process) MarshalJSON() ([]byte, error) {
	type alias Process
	return marshalWithExtras(alias(p), p.Extra)
}
