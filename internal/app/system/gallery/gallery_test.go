package gallery_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/gallery"
	"github.com/dalemusser/congregate/internal/testutil"
	"go.uber.org/zap"
)

func newService() (*gallery.Service, *testutil.PhotoStore, *testutil.Files) {
	photos := testutil.NewPhotoStore()
	files := testutil.NewFiles()
	return gallery.New(photos, files, 1<<20, zap.NewNop()), photos, files
}

func jpeg(body string) *gallery.Upload {
	return &gallery.Upload{Filename: "picnic.jpg", ContentType: "image/jpeg", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestSubmit_CreatesPendingPhoto(t *testing.T) {
	svc, photos, files := newService()

	p, err := svc.Submit(context.Background(), "  Church <b>picnic</b> ", jpeg("img"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if p.Approved {
		t.Error("submitted photo must be pending")
	}
	if p.Caption != "Church picnic" {
		t.Errorf("caption = %q, want sanitized", p.Caption)
	}
	if !strings.HasPrefix(p.StoragePath, "gallery/") || !files.Has(p.StoragePath) {
		t.Errorf("file not stored at %q", p.StoragePath)
	}
	if photos.Len() != 1 {
		t.Errorf("expected 1 photo, got %d", photos.Len())
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		upload  *gallery.Upload
	}{
		{"no caption", "", jpeg("img")},
		{"markup-only caption", "<script>x</script>", jpeg("img")},
		{"no file", "Picnic", nil},
		{"empty file", "Picnic", jpeg("")},
		{"not an image", "Picnic", &gallery.Upload{Filename: "a.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("x")}},
		{"too large", "Picnic", &gallery.Upload{Filename: "a.jpg", ContentType: "image/jpeg", Size: 2 << 20, Body: strings.NewReader("x")}},
		{"caption too long", strings.Repeat("a", gallery.MaxCaptionLen+1), jpeg("img")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, photos, files := newService()
			_, err := svc.Submit(context.Background(), tt.caption, tt.upload)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if photos.Len() != 0 || files.Len() != 0 {
				t.Error("store changed after rejected submission")
			}
		})
	}
}

func TestApprove_MovesToPublicList(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	p, _ := svc.Submit(ctx, "Picnic", jpeg("img"))

	public, _ := svc.List(ctx, true)
	if len(public) != 0 {
		t.Fatal("pending photo must not be public")
	}

	if _, err := svc.Approve(ctx, p.ID.Hex()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	public, _ = svc.List(ctx, true)
	if len(public) != 1 || public[0].ID != p.ID {
		t.Errorf("approved photo missing from public list: %+v", public)
	}
	pending, _ := svc.List(ctx, false)
	if len(pending) != 0 {
		t.Error("approved photo still pending")
	}
}

func TestReject_DeletesRecordAndFile(t *testing.T) {
	svc, photos, files := newService()
	ctx := context.Background()
	p, _ := svc.Submit(ctx, "Picnic", jpeg("img"))

	if err := svc.Reject(ctx, p.ID.Hex()); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if photos.Len() != 0 {
		t.Error("photo record should be deleted")
	}
	if files.Has(p.StoragePath) {
		t.Error("stored file should be deleted")
	}
	if err := svc.Reject(ctx, p.ID.Hex()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second reject: expected not found, got %v", err)
	}
}
