package chapters

import (
	"errors"
	"reflect"
	"testing"

	"github.com/brogergvhs/ficpub/internal/errs"
	"github.com/brogergvhs/ficpub/internal/extract"
	"github.com/brogergvhs/ficpub/internal/providers"
)

var declared = []string{"1. One", "2. Two", "3. Three"}

func ext(source, chapter string) *extract.Extract {
	return &extract.Extract{Source: source, Chapter: chapter, AllChapters: declared}
}

func sources(in []*extract.Extract) []string {
	out := make([]string, len(in))
	for i, e := range in {
		out[i] = e.Source
	}
	return out
}

func TestOrderFollowsDeclaredList(t *testing.T) {
	in := []*extract.Extract{
		ext("c.html", "3. Three"),
		ext("a.html", "1. One"),
		ext("b.html", "2. Two"),
	}

	got, err := Order(in)
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}

	want := []string{"a.html", "b.html", "c.html"}
	if !reflect.DeepEqual(sources(got), want) {
		t.Errorf("order = %v, want %v", sources(got), want)
	}
}

func TestOrderUsesFirstFileList(t *testing.T) {
	first := &extract.Extract{Source: "b.html", Chapter: "B", AllChapters: []string{"B", "A"}}
	second := &extract.Extract{Source: "a.html", Chapter: "A", AllChapters: []string{"A", "B"}}

	got, err := Order([]*extract.Extract{first, second})
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	if !reflect.DeepEqual(sources(got), []string{"b.html", "a.html"}) {
		t.Errorf("order = %v", sources(got))
	}
}

func TestOrderMissingChapter(t *testing.T) {
	_, err := Order([]*extract.Extract{ext("a.html", "1. One"), ext("c.html", "3. Three")})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Chapter missing: 2. Two" {
		t.Errorf("message = %q", err.Error())
	}
	if errs.KindOf(err) != errs.KindUser {
		t.Errorf("expected user error, got %s", errs.KindOf(err))
	}
}

func TestOrderChapterNotListed(t *testing.T) {
	_, err := Order([]*extract.Extract{ext("a.html", "1. One"), ext("x.html", "Bonus")})
	if err == nil || err.Error() != "Chapter not listed: Bonus" {
		t.Fatalf("unexpected error %v", err)
	}
	if errs.KindOf(err) != errs.KindUser {
		t.Errorf("expected user error")
	}
}

func TestOrderEdgeCases(t *testing.T) {
	if _, err := Order(nil); errs.KindOf(err) != errs.KindUser {
		t.Errorf("empty input should be a user error, got %v", err)
	}

	single := &extract.Extract{Source: "one.html", Chapter: "Oneshot"}
	got, err := Order([]*extract.Extract{single})
	if err != nil || len(got) != 1 || got[0] != single {
		t.Errorf("single extract should pass through, got %v %v", got, err)
	}

	noList := &extract.Extract{Source: "a.html", Chapter: "A"}
	_, err = Order([]*extract.Extract{noList, ext("b.html", "B")})
	if !errors.Is(err, ErrNoChapterList) || errs.KindOf(err) != errs.KindApplication {
		t.Errorf("expected application ErrNoChapterList, got %v", err)
	}
}

func TestOrderDuplicatesFirstWins(t *testing.T) {
	in := []*extract.Extract{
		ext("a.html", "1. One"),
		ext("b1.html", "2. Two"),
		ext("b2.html", "2. Two"),
		ext("c.html", "3. Three"),
	}

	got, err := Order(in)
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	if !reflect.DeepEqual(sources(got), []string{"a.html", "b1.html", "c.html"}) {
		t.Errorf("order = %v", sources(got))
	}
	if d := Duplicates(in); !reflect.DeepEqual(d, []string{"2. Two"}) {
		t.Errorf("duplicates = %v", d)
	}
}

func TestFilterAndSnapshotName(t *testing.T) {
	var all []Chapter
	for i, name := range declared {
		all = append(all, Chapter{providers.Chapter{Number: i + 1, Title: name, Label: name}})
	}

	if got := Filter(all, "", "2-3", ""); len(got) != 2 || got[0].Number != 2 {
		t.Errorf("range filter = %v", got)
	}
	if got := Filter(all, "", "", "1, 3"); len(got) != 2 || got[1].Number != 3 {
		t.Errorf("list filter = %v", got)
	}
	if got := Filter(all, "2. Two", "", ""); len(got) != 1 || got[0].Number != 2 {
		t.Errorf("label filter = %v", got)
	}
	if got := Filter(all, "", "3-1", ""); got != nil {
		t.Errorf("reversed range should select nothing, got %v", got)
	}
	if got := Filter(all, "", "2-", ""); len(got) != len(all)-1 || got[0].Number != 2 {
		t.Errorf("open range filter = %v", got)
	}
	if got := Filter(all, "", "", "3,1,3"); len(got) != 2 || got[0].Number != 3 {
		t.Errorf("list filter should keep order and drop repeats, got %v", got)
	}
	if got := Filter(all, "1", "", ""); len(got) != 1 || got[0].Number != 1 {
		t.Errorf("index filter = %v", got)
	}

	if name := all[1].SnapshotName(); name != "002_2_two.html" {
		t.Errorf("snapshot name = %q", name)
	}
	if name := (Chapter{providers.Chapter{Number: 7}}).SnapshotName(); name != "007.html" {
		t.Errorf("snapshot name without title = %q", name)
	}
}
