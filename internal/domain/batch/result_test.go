package batch

import (
	"net/http"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("doc-1", ActionIndex, http.StatusCreated)
	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Failed() {
		t.Error("ok result reported as failed")
	}
}

func TestNewError(t *testing.T) {
	r := NewError("doc-2", ActionIndex, http.StatusBadRequest, "mapper_parsing_exception", "failed to parse")
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if r.ErrType() != "mapper_parsing_exception" || r.Reason() != "failed to parse" {
		t.Errorf("error = %q %q", r.ErrType(), r.Reason())
	}
	if !r.Failed() {
		t.Error("error result not reported as failed")
	}
}

func TestFailed_DeleteNotFound(t *testing.T) {
	r := NewError("gone", ActionDelete, http.StatusNotFound, "", "not_found")
	if r.Failed() {
		t.Error("delete of missing document must not fail")
	}
	r = NewError("gone", ActionUpdate, http.StatusNotFound, "document_missing_exception", "missing")
	if !r.Failed() {
		t.Error("update of missing document must fail")
	}
}

func TestResponse_FirstFailure(t *testing.T) {
	resp := Response{Errors: true, Results: []Result{
		NewOK("1", ActionIndex, http.StatusOK),
		NewError("2", ActionDelete, http.StatusNotFound, "", "not_found"),
		NewError("3", ActionIndex, http.StatusBadRequest, "mapper_parsing_exception", "bad"),
		NewError("4", ActionIndex, http.StatusBadRequest, "mapper_parsing_exception", "worse"),
	}}
	got, pos, ok := resp.FirstFailure()
	if !ok || got.ID() != "3" || pos != 2 {
		t.Errorf("FirstFailure() = %v, %d, %v", got.ID(), pos, ok)
	}

	resp.Errors = false
	if _, _, ok := resp.FirstFailure(); ok {
		t.Error("no failure expected when Errors is false")
	}
}

func TestItems(t *testing.T) {
	doc := map[string]any{"name": "milk"}
	it := NewIndex("products", "1", "store-A", doc)
	if it.Action() != ActionIndex || it.Index() != "products" || it.ID() != "1" || it.Routing() != "store-A" {
		t.Errorf("unexpected item %+v", it)
	}
	upd := NewUpdate("products", "1", "", "price_data", doc)
	if upd.Action() != ActionUpdate || upd.Method() != "price_data" || upd.Doc()["name"] != "milk" {
		t.Errorf("unexpected update %+v", upd)
	}
	if it.Method() != "" {
		t.Error("full writes carry no method")
	}
	del := NewDelete("products", "1", "")
	if del.Action() != ActionDelete || del.Doc() != nil || del.Method() != "" {
		t.Errorf("unexpected delete %+v", del)
	}
}
