package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/internal/loader"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestLoader_File(t *testing.T) {
	t.Parallel()

	raw := testsupport.MustReadFixture(t, testsupport.OnboardingFixture)
	path := filepath.Join(t.TempDir(), "onboarding.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := loader.New(schema.NewLoaderOptions())
	doc, err := l.Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(raw, doc.Raw()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	if _, err := l.Load(context.Background(), schema.SourceFromFile(filepath.Join(t.TempDir(), "missing.json"))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestLoader_FSAndModel(t *testing.T) {
	t.Parallel()

	l := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(testsupport.Fixtures())))
	model, err := l.LoadModel(context.Background(), schema.SourceFromFS(testsupport.OnboardingFixture))
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	if model.TotalSteps() != 4 {
		t.Fatalf("TotalSteps = %d", model.TotalSteps())
	}

	noFS := loader.New(schema.NewLoaderOptions())
	if _, err := noFS.Load(context.Background(), schema.SourceFromFS("x.json")); err == nil {
		t.Fatalf("expected error without fs")
	}
}

func TestLoader_HTTP(t *testing.T) {
	t.Parallel()

	raw := testsupport.MustReadFixture(t, testsupport.OnboardingFixture)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/onboarding.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(raw)
	}))
	t.Cleanup(srv.Close)

	urlSource := func(path string) schema.Source {
		t.Helper()
		src, err := schema.ParseURLSource(srv.URL + path)
		if err != nil {
			t.Fatalf("url source: %v", err)
		}
		return src
	}

	disabled := loader.New(schema.NewLoaderOptions())
	if _, err := disabled.Load(context.Background(), urlSource("/onboarding.json")); !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	l := loader.New(schema.NewLoaderOptions(schema.WithHTTPClient(srv.Client())))
	model, err := l.LoadModel(context.Background(), urlSource("/onboarding.json"))
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	if model.Title() != "Employee Onboarding Form" {
		t.Fatalf("Title = %q", model.Title())
	}

	if _, err := l.Load(context.Background(), urlSource("/missing.json")); err == nil {
		t.Fatalf("expected error for 404")
	}

	small := loader.New(schema.NewLoaderOptions(schema.WithHTTPClient(srv.Client()), schema.WithMaxBytes(10)))
	if _, err := small.Load(context.Background(), urlSource("/onboarding.json")); !errors.Is(err, loader.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	l := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(fstest.MapFS{})))
	if _, err := l.Load(context.Background(), nil); !errors.Is(err, loader.ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, schema.SourceFromFS("x.json")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
