package search

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilter_Blank(t *testing.T) {
	if f := Filter("   ", "title"); f != nil {
		t.Errorf("expected nil filter for blank query, got %v", f)
	}
	if f := Filter("abc"); f != nil {
		t.Errorf("expected nil filter with no fields, got %v", f)
	}
}

func TestFilter_QuotesInput(t *testing.T) {
	f := Filter("a.b*", "title", "body")
	or, ok := f["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two $or clauses, got %v", f)
	}
	re, ok := or[0]["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex for title, got %T", or[0]["title"])
	}
	if re.Pattern != `a\.b\*` {
		t.Errorf("pattern = %q, want quoted", re.Pattern)
	}
	if re.Options != "i" {
		t.Errorf("options = %q, want i", re.Options)
	}
}

func TestWithNumeric(t *testing.T) {
	f := WithNumeric(Filter("12345", "full_name"), "12345", "nim")
	or := f["$or"].([]bson.M)
	if len(or) != 2 {
		t.Fatalf("expected name and nim clauses, got %d", len(or))
	}
	if or[1]["nim"] != int64(12345) {
		t.Errorf("nim clause = %v", or[1]["nim"])
	}

	// non-numeric query leaves the filter untouched
	g := WithNumeric(Filter("alice", "full_name"), "alice", "nim")
	if len(g["$or"].([]bson.M)) != 1 {
		t.Errorf("expected single clause for non-numeric query")
	}

	// numeric query with no text fields
	h := WithNumeric(nil, "42", "nim")
	if h["nim"] != int64(42) {
		t.Errorf("expected exact nim match, got %v", h)
	}
}

func TestValue(t *testing.T) {
	if Value("true") != true || Value("FALSE") != false {
		t.Error("expected boolean conversion")
	}
	if Value("active") != "active" {
		t.Error("expected plain string")
	}
	in, ok := Value("3").(bson.M)
	if !ok {
		t.Fatalf("expected $in for integer value, got %T", Value("3"))
	}
	arr := in["$in"].(bson.A)
	if arr[0] != int64(3) || arr[1] != "3" {
		t.Errorf("unexpected $in values %v", arr)
	}
}
