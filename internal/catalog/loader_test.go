package catalog

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sort"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestCatalog_LoadAll_FSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"Button.png":   {Data: pngBytes(t)},
		"CheckBox.png": {Data: []byte("not a png")},
	}
	c, _ := New([]string{"Button", "CheckBox", "Label"})

	failed := c.LoadAll(context.Background(), FSLoader{FS: fsys})
	sort.Strings(failed)
	if len(failed) != 2 || failed[0] != "CheckBox" || failed[1] != "Label" {
		t.Fatalf("failed %v, want [CheckBox Label]", failed)
	}
	valid := c.Valid()
	if len(valid) != 1 || valid[0].Name != "Button" {
		t.Errorf("Valid %v, want [Button]", valid)
	}
}

func TestCatalog_Load_DeliversEveryResult(t *testing.T) {
	c, _ := New([]string{"Button", "CheckBox", "Label"})
	loader := LoaderFunc(func(_ context.Context, it Item) error {
		if it.Name == "Label" {
			return errors.New("gone")
		}
		return nil
	})
	n := 0
	for res := range c.Load(context.Background(), loader) {
		n++
		if res.Name == "Label" && res.Err == nil {
			t.Error("Label should fail")
		}
	}
	if n != 3 {
		t.Errorf("got %d results, want 3", n)
	}
	if it, _ := c.Item("Label"); it.Valid {
		t.Error("Label should be invalid once its result is delivered")
	}
}

func TestFSLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FSLoader{FS: fstest.MapFS{"Button.png": {Data: pngBytes(t)}}}.Load(ctx, Item{Name: "Button"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err %v, want context.Canceled", err)
	}
}
