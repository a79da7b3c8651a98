package layering

import (
	"errors"
	"math/big"
	"regexp"
	"testing"
	"time"
)

func TestCloneDetachesNestedContainers(t *testing.T) {
	original := map[string]any{
		"userInfo": map[string]any{
			"name": "ada",
			"tags": []any{"x", map[string]any{"deep": 1}},
		},
		"scores": map[string]int{"a": 1},
		"set":    map[string]struct{}{"one": {}},
		"list":   []string{"a", "b"},
		"grid":   [2][]int{{1}, {2}},
	}

	cloned := CloneTree(original)

	cloned["userInfo"].(map[string]any)["name"] = "grace"
	cloned["userInfo"].(map[string]any)["tags"].([]any)[1].(map[string]any)["deep"] = 2
	cloned["scores"].(map[string]int)["a"] = 9
	cloned["set"].(map[string]struct{})["two"] = struct{}{}
	cloned["list"].([]string)[0] = "z"
	grid := cloned["grid"].([2][]int)
	grid[0][0] = 42

	if got, _ := Get(original, "userInfo.name"); got != "ada" {
		t.Fatalf("original name changed to %v", got)
	}
	deep := original["userInfo"].(map[string]any)["tags"].([]any)[1].(map[string]any)["deep"]
	if deep != 1 {
		t.Fatalf("original nested list record changed to %v", deep)
	}
	if original["scores"].(map[string]int)["a"] != 1 {
		t.Fatalf("original typed map changed")
	}
	if len(original["set"].(map[string]struct{})) != 1 {
		t.Fatalf("original set changed")
	}
	if original["list"].([]string)[0] != "a" {
		t.Fatalf("original typed slice changed")
	}
	if original["grid"].([2][]int)[0][0] != 1 {
		t.Fatalf("original array element slice changed")
	}
}

func TestCloneRebuildsSpecialWrappers(t *testing.T) {
	re := regexp.MustCompile(`^a+$`)
	n := big.NewInt(42)
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	leaf := errors.New("boom")

	cloned := CloneTree(map[string]any{
		"re":   re,
		"n":    n,
		"when": &when,
		"err":  leaf,
	})

	if cloned["re"] == any(re) || cloned["re"].(*regexp.Regexp).String() != re.String() {
		t.Fatalf("expected a recompiled regexp, got %v", cloned["re"])
	}
	clonedN := cloned["n"].(*big.Int)
	clonedN.SetInt64(7)
	if n.Int64() != 42 {
		t.Fatalf("expected big.Int to be copied, original now %v", n)
	}
	clonedWhen := cloned["when"].(*time.Time)
	if clonedWhen == &when || !clonedWhen.Equal(when) {
		t.Fatalf("expected a fresh time pointer with the same instant")
	}
	clonedErr := cloned["err"].(error)
	if clonedErr == leaf || clonedErr.Error() != "boom" {
		t.Fatalf("expected a rebuilt leaf error, got %v", clonedErr)
	}
}

func TestCloneKeepsOpaqueValuesByReference(t *testing.T) {
	type widget struct{ Name string }
	w := &widget{Name: "w"}
	fn := func() {}
	ch := make(chan int)

	cloned := CloneTree(map[string]any{"w": w, "fn": fn, "ch": ch})

	if cloned["w"].(*widget) != w {
		t.Fatalf("expected struct pointer to be shared")
	}
	if cloned["ch"].(chan int) != ch {
		t.Fatalf("expected channel to be shared")
	}
	if cloned["fn"] == nil {
		t.Fatalf("expected func to be carried over")
	}
}

func TestCloneCopiesStructFields(t *testing.T) {
	type prefs struct {
		Tags   []string
		Extra  map[string]any
		hidden []int
	}
	hidden := []int{1}
	original := prefs{Tags: []string{"a"}, Extra: map[string]any{"k": "v"}, hidden: hidden}

	cloned := Clone(original).(prefs)
	cloned.Tags[0] = "changed"
	cloned.Extra["k"] = "changed"

	if original.Tags[0] != "a" || original.Extra["k"] != "v" {
		t.Fatalf("expected exported struct fields detached, got %+v", original)
	}
	if &cloned.hidden[0] != &hidden[0] {
		t.Fatalf("expected unexported field copied shallowly")
	}
}

func TestCloneReproducesCycles(t *testing.T) {
	original := map[string]any{"name": "root"}
	original["self"] = original
	child := map[string]any{"parent": original}
	original["child"] = child

	cloned := CloneTree(original)

	self := cloned["self"].(map[string]any)
	self["name"] = "renamed"
	if cloned["name"] != "renamed" {
		t.Fatalf("expected the cycle to point at the clone itself")
	}
	if original["name"] != "root" {
		t.Fatalf("expected the original to stay untouched, got %v", original["name"])
	}
	parent := cloned["child"].(map[string]any)["parent"].(map[string]any)
	if parent["name"] != "renamed" {
		t.Fatalf("expected back reference to resolve to the cloned root")
	}
}

func TestClonePreservesSharedStructure(t *testing.T) {
	shared := map[string]any{"v": 1}
	cloned := CloneTree(map[string]any{"a": shared, "b": shared})
	cloned["a"].(map[string]any)["v"] = 2
	if cloned["b"].(map[string]any)["v"] != 2 {
		t.Fatalf("expected shared input containers to stay shared in the clone")
	}
	if shared["v"] != 1 {
		t.Fatalf("expected input untouched")
	}
}

func TestCloneScalarsAndNil(t *testing.T) {
	if Clone(nil) != nil {
		t.Fatalf("expected nil")
	}
	if Clone(3) != 3 || Clone("s") != "s" || Clone(true) != true {
		t.Fatalf("expected scalars returned as-is")
	}
	if CloneTree(nil) != nil {
		t.Fatalf("expected nil tree to stay nil")
	}
}
