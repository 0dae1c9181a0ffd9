package pyext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesExtension(t *testing.T) {
	testCases := []struct {
		filename   string
		extensions []string
		expected   bool
	}{
		{"module.so", []string{".so"}, true},
		{"module.PYD", []string{".pyd"}, true},
		{"module.dylib", []string{".so", ".dylib"}, true},
		{"module.o", []string{".so", ".pyd"}, false},
		{"noext", []string{".so"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.expected, MatchesExtension(tc.filename, tc.extensions...))
		})
	}
}

func TestBuildError(t *testing.T) {
	cause := errors.New("exit status 1")
	output := []string{"g++ -c src/cnf.cpp", "src/cnf.cpp:1: error: boom"}

	err := BuildError("Compile", output, cause)

	expected := "Compile build failed: exit status 1\n\nBuild output:\ng++ -c src/cnf.cpp\nsrc/cnf.cpp:1: error: boom"
	assert.Equal(t, expected, err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "Link build failed", BuildError("Link", nil, nil).Error())
}
