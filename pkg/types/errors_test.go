package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractErrorUnwrap(t *testing.T) {
	err := error(&ContractError{Kind: ErrArgumentContract, Operation: "foo", Position: 0})
	assert.True(t, errors.Is(err, ErrArgumentContract))
	assert.False(t, errors.Is(err, ErrReturnContract))

	var ce *ContractError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "foo", ce.Operation)
}

func TestContractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ContractError
		want string
	}{
		{
			name: "argument position",
			err: &ContractError{
				Kind: ErrArgumentContract, Operation: "foo", Position: 0,
				Pattern: Integer, Value: "x",
				Owner: Owner{Name: "IFoo", Kind: OwnerInterface},
			},
			want: `foo: arg 0: not Integer === "x" (interface IFoo)`,
		},
		{
			name: "return value",
			err: &ContractError{
				Kind: ErrReturnContract, Operation: "baz", Position: -1,
				Pattern: String, Value: 1,
				Owner: Owner{Name: "Baz", Kind: OwnerImplementation},
			},
			want: "baz: return value: not String === 1 (implementation Baz)",
		},
		{
			name: "detail wins",
			err: &ContractError{
				Kind: ErrContractDefinition, Operation: "foo", Position: -1,
				Detail: "arity mismatch (2 for 3)",
			},
			want: "foo: arity mismatch (2 for 3)",
		},
		{
			name: "missing operations",
			err: &ContractError{
				Kind: ErrMissingImplementation, Position: -1,
				Missing: []string{"foo", "bar"},
				Owner:   Owner{Name: "T", Kind: OwnerImplementation},
			},
			want: "not implemented foo, bar (implementation T)",
		},
		{
			name: "bare kind",
			err:  &ContractError{Kind: ErrContractDefinition, Position: -1},
			want: "definition mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
