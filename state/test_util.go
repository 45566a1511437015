package state

import (
	"strings"
	"testing"

	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/tender"
)

// NewTestRegistry builds a registry from inline HCL for tests.
func NewTestRegistry(t testing.TB, confString string) (*Config, *tender.Registry) {
	log := log2.NewTest(t, log2.LDebug)
	log.SetFlags(log2.LTestFlags)
	c := MustReadConfig(strings.NewReader(confString), log)
	reg, err := c.Registry(log)
	if err != nil {
		t.Fatal(err)
	}
	return c, reg
}
