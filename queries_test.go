package jobflow

import (
	"errors"
	"testing"
)

func TestCheckNotCallable(t *testing.T) {
	cases := []struct {
		name    string
		data    any
		wantErr bool
	}{
		{"nil", nil, false},
		{"map", map[string]string{"to": "alice"}, false},
		{"string", "payload", false},
		{"func", func() {}, true},
		{"chan", make(chan int), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkNotCallable(tc.data)
			if tc.wantErr && !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("checkNotCallable(%v) = %v, want ErrInvalidArgument", tc.data, err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("checkNotCallable(%v) = %v, want nil", tc.data, err)
			}
		})
	}
}

func TestMarshalData(t *testing.T) {
	b, err := marshalData(map[string]string{"to": "alice"})
	if err != nil {
		t.Fatalf("marshalData: %v", err)
	}
	if string(b) != `{"to":"alice"}` {
		t.Fatalf("got %s, want {\"to\":\"alice\"}", b)
	}

	b, err = marshalData(nil)
	if err != nil {
		t.Fatalf("marshalData(nil): %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("got %s, want null", b)
	}
}
