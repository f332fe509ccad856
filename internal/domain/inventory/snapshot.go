package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is a single inventory entry.
type Item struct {
	Name     string
	Quantity int
}

// Snapshot is an ordered view of the store, serialized as a flat JSON object
// {"item": qty, ...}. encoding/json sorts map keys, so the snapshot implements its
// own (un)marshalling to keep entries in store order on disk and back.
type Snapshot []Item

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(it.Quantity))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	out := make(Snapshot, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("quantity for %q is not a number", name)
		}
		qty, err := num.Int64()
		if err != nil {
			return fmt.Errorf("quantity for %q is not a whole number: %s", name, num)
		}

		out = append(out, Item{Name: name, Quantity: int(qty)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}
