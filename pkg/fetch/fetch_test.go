package fetch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/0xfelis/gerrit-stats/pkg/logger"
)

func TestNew_NoHost(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, logger.Noop())
	if !errors.Is(err, ErrNoHost) {
		t.Fatalf("New() error = %v, want ErrNoHost", err)
	}
}

func TestQueryArgs(t *testing.T) {
	t.Parallel()

	got := queryArgs("review.example.org", 29418, 30)
	want := []string{
		"-p", "29418",
		"review.example.org",
		"gerrit", "query",
		"--format=JSON", "--all-approvals", "--comments",
		"--",
		"-age:30d", "OR", "status:open",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("queryArgs() = %v, want %v", got, want)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	c, err := New(Config{Host: "review.example.org"}, logger.Noop())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.Key(30), "review.example.org:29418/30d"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestCacheKey_DefaultPort(t *testing.T) {
	t.Parallel()

	if got, want := CacheKey("review.example.org", 0, 14), "review.example.org:29418/14d"; got != want {
		t.Errorf("CacheKey() = %q, want %q", got, want)
	}
}
