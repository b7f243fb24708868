package appconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDev(t *testing.T) {
	cases := map[string]bool{
		"dev":         true,
		"Development": true,
		"DEV":         true,
		"prod":        false,
		"staging":     false,
		"":            false,
	}

	for env, want := range cases {
		c := &Config{Environment: env}
		assert.Equal(t, want, c.IsDev(), "environment %q", env)
	}
}
