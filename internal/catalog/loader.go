package catalog

import (
	"context"
	"fmt"
	"image/png"
	"io/fs"
	"sync"
)

// AssetLoader fetches the image for one item. Only success or failure matters.
type AssetLoader interface {
	Load(ctx context.Context, item Item) error
}

// LoaderFunc adapts a function to AssetLoader.
type LoaderFunc func(ctx context.Context, item Item) error

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, item Item) error { return f(ctx, item) }

// LoadResult is the completion event for one asset load.
type LoadResult struct {
	Name string
	Err  error
}

// Load starts one asynchronous load per item. Each result is applied to the
// catalog and then forwarded on the returned channel, which is closed after the
// last result.
func (c *Catalog) Load(ctx context.Context, loader AssetLoader) <-chan LoadResult {
	items := c.Items()
	out := make(chan LoadResult, len(items))
	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		go func(it Item) {
			defer wg.Done()
			res := LoadResult{Name: it.Name, Err: loader.Load(ctx, it)}
			c.Apply(res)
			out <- res
		}(it)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// LoadAll runs Load and waits for every result, returning the names that failed.
func (c *Catalog) LoadAll(ctx context.Context, loader AssetLoader) []string {
	var failed []string
	for res := range c.Load(ctx, loader) {
		if res.Err != nil {
			failed = append(failed, res.Name)
		}
	}
	return failed
}

// FSLoader checks that <name>.png exists in FS and has a readable PNG header.
type FSLoader struct {
	FS fs.FS
}

// Load implements AssetLoader.
func (l FSLoader) Load(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := l.FS.Open(item.Name + ".png")
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode %s.png: %w", item.Name, err)
	}
	return nil
}
