package booking

import (
	"fmt"
	"strings"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

// ReferenceGenerator produces short opaque confirmation codes for
// approved reservations. The code encodes the request and requester
// IDs so it is stable for a given approval, but the salt keeps the
// IDs from being read back out by clients.
type ReferenceGenerator struct {
	h *hashids.HashID
}

func NewReferenceGenerator(salt string) (*ReferenceGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("error creating hashid encoder: %w", err)
	}
	return &ReferenceGenerator{h: h}, nil
}

// Generate returns a code like CS-240115-XXXXXXXX. Falls back to the
// raw IDs if encoding fails, which only happens with a bad alphabet.
func (g *ReferenceGenerator) Generate(requestID, requesterID int64) string {
	code, err := g.h.EncodeInt64([]int64{requestID, requesterID})
	if err != nil {
		code = fmt.Sprintf("%d%d", requestID, requesterID)
	}
	return fmt.Sprintf("CS-%s-%s", time.Now().UTC().Format("060102"), strings.ToUpper(code))
}
