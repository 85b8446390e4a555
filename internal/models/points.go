package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// PointValue is a card a player has picked: either a number from the deck or
// the unknown card "?". A player who has not voted this round has no
// PointValue at all (nil).
type PointValue struct {
	Unknown bool
	Value   int
}

const unknownCard = `"?"`

func (p PointValue) MarshalJSON() ([]byte, error) {
	if p.Unknown {
		return []byte(unknownCard), nil
	}
	return json.Marshal(p.Value)
}

func (p *PointValue) UnmarshalJSON(data []byte) error {
	if string(data) == unknownCard {
		*p = PointValue{Unknown: true}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("points must be a number or \"?\": %w", err)
	}
	if v < 0 {
		return errors.New("points must be non-negative")
	}
	*p = PointValue{Value: v}
	return nil
}

func (p PointValue) String() string {
	if p.Unknown {
		return "?"
	}
	return strconv.Itoa(p.Value)
}
