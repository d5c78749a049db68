package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty string.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestOf(t *testing.T) {
	a, err := Of(map[string]int{"x": 1, "y": 2}, []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Of(map[string]int{"y": 2, "x": 1}, []string{"a"})
	if a != b {
		t.Error("equal values hashed differently")
	}
	c, _ := Of([]string{"a"}, map[string]int{"x": 1, "y": 2})
	if a == c {
		t.Error("order of values should matter")
	}
	if _, err := Of(make(chan int)); err == nil {
		t.Error("expected error for unencodable value")
	}
}
