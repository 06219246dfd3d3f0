package assert

import (
	"testing"

	"github.com/iov-one/ledger/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		want     error
		got      error
		wantFail bool
	}{
		"same error": {
			want: errors.ErrEmpty,
			got:  errors.ErrEmpty,
		},
		"compared to nil": {
			want:     nil,
			got:      errors.ErrEmpty,
			wantFail: true,
		},
		"both nil": {},
		"wrapped": {
			want: errors.ErrEmpty,
			got:  errors.Wrap(errors.ErrEmpty, "test"),
		},
		"different kind": {
			want:     errors.ErrNotFound,
			got:      errors.Wrap(errors.ErrEmpty, "test"),
			wantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.want, tc.got)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	cases := map[string]struct {
		err      error
		name     string
		want     *errors.Error
		wantFail bool
	}{
		"single error is found": {
			err:  errors.Field("Maker", errors.ErrEmpty, "required"),
			name: "Maker",
			want: errors.ErrEmpty,
		},
		"nil asserts a clean field": {
			err:  errors.Field("Maker", errors.ErrEmpty, "required"),
			name: "ID",
		},
		"nil fails when an error is present": {
			err:      errors.Field("Maker", errors.ErrEmpty, "required"),
			name:     "Maker",
			wantFail: true,
		},
		"two errors for one field": {
			err: errors.Append(
				errors.Field("Maker", errors.ErrEmpty, "first"),
				errors.Field("Maker", errors.ErrEmpty, "second"),
			),
			name:     "Maker",
			want:     errors.ErrEmpty,
			wantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			FieldError(mock, tc.err, tc.name, tc.want)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestNilAndEqual(t *testing.T) {
	var typedNil *errors.Error
	Nil(t, nil)
	Nil(t, typedNil)
	Equal(t, []byte("a"), []byte("a"))

	mock := &tmock{TB: t}
	Nil(mock, 4)
	Equal(mock, 1, 2)
	if mock.failcalls != 2 {
		t.Fatalf("want 2 failures, got %d", mock.failcalls)
	}
	Panics(t, func() { panic("boom") })
}

// tmock records failures instead of stopping the test.
type tmock struct {
	testing.TB
	failcalls int
}

func (m *tmock) Fatal(args ...interface{}) {
	m.failcalls++
}

func (m *tmock) Fatalf(s string, args ...interface{}) {
	m.failcalls++
}

func (m *tmock) Logf(s string, args ...interface{}) {}
