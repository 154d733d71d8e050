package catalog_test

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestStaticProvider_ListAll(t *testing.T) {
	p := catalog.NewDefaultProvider()

	items, err := p.ListItems(context.Background(), "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
}

func TestStaticProvider_FilterByCategory(t *testing.T) {
	p := catalog.NewDefaultProvider()

	items, err := p.ListItems(context.Background(), "Pizza")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 pizzas, got %d", len(items))
	}
	for _, item := range items {
		if item.Category != "pizza" {
			t.Fatalf("unexpected category %q", item.Category)
		}
	}
}

func TestStaticProvider_SkipsUnavailable(t *testing.T) {
	p := catalog.NewStaticProvider([]domain.CatalogItem{
		{ID: "a", Name: "A", Category: "pizza", Available: true},
		{ID: "b", Name: "B", Category: "pizza", Available: false},
	})

	items, err := p.ListItems(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("expected only available item, got %+v", items)
	}
}

func TestStaticProvider_Replace(t *testing.T) {
	p := catalog.NewStaticProvider(nil)

	p.Replace([]domain.CatalogItem{{ID: "x", Name: "X", Available: true}})

	items, err := p.ListItems(context.Background(), "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "x" {
		t.Fatalf("expected replaced items, got %+v", items)
	}
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	p := catalog.NewDefaultProvider()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ListItems(ctx, ""); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
