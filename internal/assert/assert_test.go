package assert

import (
	"strings"
	"testing"
)

func TestThatPasses(t *testing.T) {
	That(true, "never printed %d", 1)
}

func TestThatPanicsWithMessage(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("panic value type = %T, want string", r)
		}
		if !strings.Contains(msg, "depth 3 > 2") {
			t.Errorf("panic message %q does not contain formatted text", msg)
		}
	}()
	That(false, "depth %d > %d", 3, 2)
}
