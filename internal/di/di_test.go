package di

import "testing"

type counterService struct{ n int }

func TestGetToken_BuildsOnce(t *testing.T) {
	c := NewContainer()
	tok := NewToken[*counterService]("test.counter")

	builds := 0
	RegisterToken(c, tok, func(ServiceRegistry) *counterService {
		builds++
		return &counterService{n: builds}
	})

	first := GetToken(c, tok)
	second := GetToken(c, tok)

	if first != second {
		t.Error("expected the same instance on repeated resolution")
	}
	if builds != 1 {
		t.Errorf("factory ran %d times, want 1", builds)
	}
}

func TestGet_ResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("base", 21)
	doubled := NewToken[int]("doubled")
	RegisterToken(c, doubled, func(sr ServiceRegistry) int {
		return sr.Get("base").(int) * 2
	})

	if got := GetToken(c, doubled); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestGet_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()
	NewContainer().Get("missing")
}

func TestGet_CyclePanics(t *testing.T) {
	c := NewContainer()
	c.RegisterFactory("a", func(sr ServiceRegistry) any { return sr.Get("b") })
	c.RegisterFactory("b", func(sr ServiceRegistry) any { return sr.Get("a") })

	defer func() {
		if recover() == nil {
			t.Error("expected panic for dependency cycle")
		}
	}()
	c.Get("a")
}
