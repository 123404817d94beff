package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{
			name:       "postgres names the constraint",
			err:        errors.New(`ERROR: duplicate key value violates unique constraint "idx_discount_codes_tenant_code" (SQLSTATE 23505)`),
			constraint: "idx_discount_codes_tenant_code",
			want:       true,
		},
		{
			name:       "sqlite names the columns, not the constraint",
			err:        errors.New("UNIQUE constraint failed: discount_codes.tenant_id, discount_codes.code"),
			constraint: "idx_discount_codes_tenant_code",
			want:       true,
		},
		{
			name:       "generic duplicate key without a constraint filter",
			err:        errors.New("duplicate key value violates unique constraint"),
			constraint: "",
			want:       true,
		},
		{
			name:       "unrelated error",
			err:        errors.New("connection refused"),
			constraint: "idx_discount_codes_tenant_code",
			want:       false,
		},
		{
			name:       "nil error",
			err:        nil,
			constraint: "idx_discount_codes_tenant_code",
			want:       false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsUniqueViolation(tc.err, tc.constraint))
		})
	}
}
