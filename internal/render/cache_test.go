package render

import (
	"strings"
	"sync"
	"testing"
)

func TestRendererCache_ReusesPerOptions(t *testing.T) {
	ResetRenderers()
	defer ResetRenderers()

	opts := DefaultOptions().WithStyle("notty")

	first, err := renderers.lookup(opts)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	again, err := renderers.lookup(opts)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if first != again {
		t.Error("equal options should share one renderer")
	}

	if _, err := renderers.lookup(opts.WithWidth(40)); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if n := CachedRenderers(); n != 2 {
		t.Errorf("CachedRenderers() = %d, want 2", n)
	}
}

func TestRendererCache_FailedBuildNotCached(t *testing.T) {
	ResetRenderers()
	defer ResetRenderers()

	opts := DefaultOptions().WithStyle("missing_style.json")
	for i := 0; i < 2; i++ {
		if _, err := renderers.lookup(opts); err == nil {
			t.Fatal("expected error for a missing style file")
		}
	}
	if n := CachedRenderers(); n != 0 {
		t.Errorf("CachedRenderers() = %d, want 0", n)
	}
}

func TestRendererCache_ConcurrentRender(t *testing.T) {
	ResetRenderers()
	defer ResetRenderers()

	opts := DefaultOptions().WithStyle("notty")
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := Markdown("**Host:** hello listeners", opts)
			if err != nil {
				errs <- err
				return
			}
			if !strings.Contains(out, "listeners") {
				errs <- errUnexpected(out)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render: %v", err)
	}
	if n := CachedRenderers(); n != 1 {
		t.Errorf("CachedRenderers() = %d, want 1", n)
	}
}

func TestResetRenderers(t *testing.T) {
	if _, err := Markdown("# x", DefaultOptions().WithStyle("notty")); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	ResetRenderers()
	if n := CachedRenderers(); n != 0 {
		t.Errorf("CachedRenderers() = %d after reset", n)
	}
}

type errUnexpected string

func (e errUnexpected) Error() string { return "unexpected output: " + string(e) }
