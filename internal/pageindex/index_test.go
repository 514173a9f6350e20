package pageindex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jackzampolin/basicbook/internal/listing"
	"github.com/jackzampolin/basicbook/internal/providers"
)

// fakeSource serves paths for a fixed set of pages.
type fakeSource map[int]string

func (s fakeSource) Path(page int) (string, bool) {
	path, ok := s[page]
	return path, ok
}

func TestFromUploads(t *testing.T) {
	uploads := []Upload{
		{Page: 3, Handle: providers.Handle{Name: "files/a"}},
		{Page: 1, Handle: providers.Handle{Name: "files/b"}},
		{Page: 2, Handle: providers.Handle{Name: "files/c"}},
	}

	ix := FromUploads(uploads)
	if len(ix) != 3 {
		t.Fatalf("index size = %d, want 3", len(ix))
	}
	if ix[3].Name != "files/a" {
		t.Errorf("page 3 handle = %s, want files/a", ix[3].Name)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(ix.Pages(), want) {
		t.Errorf("Pages() = %v, want %v", ix.Pages(), want)
	}
}

func TestFromUploads_FirstHandleWins(t *testing.T) {
	uploads := []Upload{
		{Page: 5, Handle: providers.Handle{Name: "files/first"}},
		{Page: 5, Handle: providers.Handle{Name: "files/second"}},
	}

	ix := FromUploads(uploads)
	if len(ix) != 1 {
		t.Fatalf("index size = %d, want 1", len(ix))
	}
	if ix[5].Name != "files/first" {
		t.Errorf("page 5 handle = %s, want files/first", ix[5].Name)
	}
}

func TestBuildSelective_DeduplicatesPages(t *testing.T) {
	// Two programs with an overlapping page: [1,2] and [2,3]. The union is
	// [1,2,3] and page 2 must be uploaded once, not twice.
	records := []listing.Record{
		{Name: "A", Pages: []int{1, 2}},
		{Name: "B", Pages: []int{2, 3}},
	}
	pages := listing.UniquePages(records)
	if want := []int{1, 2, 3}; !reflect.DeepEqual(pages, want) {
		t.Fatalf("UniquePages() = %v, want %v", pages, want)
	}

	mock := providers.NewMockClient()
	source := fakeSource{1: "page1.png", 2: "page2.png", 3: "page3.png"}

	ix := BuildSelective(t.Context(), mock, source, pages, nil)
	if mock.UploadCount() != 3 {
		t.Errorf("uploads = %d, want 3", mock.UploadCount())
	}
	if len(ix) != 3 {
		t.Errorf("index size = %d, want 3", len(ix))
	}
}

func TestBuildSelective_SkipsMissingPages(t *testing.T) {
	mock := providers.NewMockClient()
	source := fakeSource{1: "page1.png", 3: "page3.png"}

	ix := BuildSelective(t.Context(), mock, source, []int{1, 2, 3}, nil)
	if mock.UploadCount() != 2 {
		t.Errorf("uploads = %d, want 2", mock.UploadCount())
	}
	if _, ok := ix[2]; ok {
		t.Error("page 2 should not be indexed")
	}
}

func TestBuildSelective_SkipsFailedUploads(t *testing.T) {
	mock := providers.NewMockClient()
	mock.UploadErrFor = map[string]error{"page2.png": errors.New("quota exceeded")}
	source := fakeSource{1: "page1.png", 2: "page2.png", 3: "page3.png"}

	ix := BuildSelective(t.Context(), mock, source, []int{1, 2, 3}, nil)
	if len(ix) != 2 {
		t.Fatalf("index size = %d, want 2", len(ix))
	}
	if _, ok := ix[2]; ok {
		t.Error("failed upload for page 2 should not be indexed")
	}
	// A failed upload in the middle must not shift the mapping of later pages.
	if ix[3].Name == "" {
		t.Error("page 3 should still be indexed after page 2 failed")
	}
}

func TestHandlesFor(t *testing.T) {
	ix := Index{
		1: {Name: "files/a"},
		2: {Name: "files/b"},
		4: {Name: "files/c"},
	}

	handles, missing := ix.HandlesFor([]int{2, 3, 1})
	if len(handles) != 2 {
		t.Fatalf("handles = %d, want 2", len(handles))
	}
	// Declared order, not page order.
	if handles[0].Name != "files/b" || handles[1].Name != "files/a" {
		t.Errorf("handle order = %s, %s; want files/b, files/a", handles[0].Name, handles[1].Name)
	}
	if want := []int{3}; !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestHandles_OrderedByPage(t *testing.T) {
	ix := Index{
		9: {Name: "files/z"},
		2: {Name: "files/b"},
		5: {Name: "files/m"},
	}

	handles := ix.Handles()
	want := []string{"files/b", "files/m", "files/z"}
	for i, h := range handles {
		if h.Name != want[i] {
			t.Errorf("handles[%d] = %s, want %s", i, h.Name, want[i])
		}
	}
}
