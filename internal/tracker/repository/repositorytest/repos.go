package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/repository"
)

type productRepo struct{ s *MemStore }

func (r *productRepo) FindForOwner(ctx context.Context, ownerID, canonicalURL, url string) (*entity.TrackedProduct, error) {
	r.s.st.mu.Lock()
	hook := r.s.st.lookupHook
	r.s.st.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	var found *entity.TrackedProduct
	for _, p := range r.s.st.products {
		if p.OwnerID != ownerID || (p.CanonicalURL != canonicalURL && p.URL != url) {
			continue
		}
		if found == nil || p.ID < found.ID {
			p := p
			found = &p
		}
	}
	return found, nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*entity.TrackedProduct, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) LockByID(ctx context.Context, id int64) (*entity.TrackedProduct, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepo) Create(ctx context.Context, product *entity.TrackedProduct) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	if err := r.checkUnique(*product, 0); err != nil {
		return err
	}
	product.ID = r.s.newID()
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	r.s.st.products[product.ID] = *product

	id := product.ID
	r.s.record(func() { delete(r.s.st.products, id) })
	return nil
}

func (r *productRepo) Update(ctx context.Context, product *entity.TrackedProduct) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	prev, ok := r.s.st.products[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkUnique(*product, product.ID); err != nil {
		return err
	}
	product.UpdatedAt = time.Now().UTC()
	r.s.st.products[product.ID] = *product
	r.s.record(func() { r.s.st.products[prev.ID] = prev })
	return nil
}

func (r *productRepo) checkUnique(p entity.TrackedProduct, self int64) error {
	for _, other := range r.s.st.products {
		if other.ID == self || other.OwnerID != p.OwnerID {
			continue
		}
		if other.CanonicalURL == p.CanonicalURL {
			return fmt.Errorf("%w: ux_tracked_products_owner_canonical", repository.ErrDuplicateKey)
		}
		if other.URL == p.URL {
			return fmt.Errorf("%w: ux_tracked_products_owner_url", repository.ErrDuplicateKey)
		}
	}
	return nil
}

func (r *productRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	prev, ok := r.s.st.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := prev
	next.IsActive = false
	r.s.st.products[id] = next
	r.s.record(func() { r.s.st.products[id] = prev })
	return nil
}

func (r *productRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	var ids []int64
	for id, p := range r.s.st.products {
		if p.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type snapshotRepo struct{ s *MemStore }

func (r *snapshotRepo) Create(ctx context.Context, snapshot *entity.PriceSnapshot) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	if err := r.s.failure(OpSnapshotCreate); err != nil {
		return err
	}
	if _, ok := r.s.st.products[snapshot.TrackedProductID]; !ok {
		return fmt.Errorf("snapshot references unknown product %d", snapshot.TrackedProductID)
	}
	snapshot.ID = r.s.newID()
	r.s.st.snapshots[snapshot.ID] = *snapshot

	id := snapshot.ID
	r.s.record(func() { delete(r.s.st.snapshots, id) })
	return nil
}

func (r *snapshotRepo) ListPricedSince(ctx context.Context, productID int64, since time.Time) ([]entity.PriceSnapshot, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	var out []entity.PriceSnapshot
	for _, s := range r.s.st.snapshots {
		if s.TrackedProductID == productID && s.Price != nil && !s.FetchedAt.Before(since) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FetchedAt.Before(out[j].FetchedAt)
	})
	return out, nil
}

type insightRepo struct{ s *MemStore }

func (r *insightRepo) Create(ctx context.Context, insight *entity.AIInsight) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	if err := r.s.failure(OpInsightCreate); err != nil {
		return err
	}
	insight.ID = r.s.newID()
	r.s.st.insights[insight.ID] = *insight

	id := insight.ID
	r.s.record(func() { delete(r.s.st.insights, id) })
	return nil
}

func (r *insightRepo) GetLatest(ctx context.Context, productID int64) (*entity.AIInsight, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	var latest *entity.AIInsight
	for _, in := range r.s.st.insights {
		if in.ProductID != productID {
			continue
		}
		if latest == nil || in.CreatedAt.After(latest.CreatedAt) ||
			(in.CreatedAt.Equal(latest.CreatedAt) && in.ID > latest.ID) {
			in := in
			latest = &in
		}
	}
	return latest, nil
}

type eventRepo struct{ s *MemStore }

func (r *eventRepo) Create(ctx context.Context, event *entity.PriceEvent) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	event.ID = r.s.newID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.s.st.events[event.ID] = *event

	id := event.ID
	r.s.record(func() { delete(r.s.st.events, id) })
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, id int64) (*entity.PriceEvent, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	e, ok := r.s.st.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *eventRepo) FindArmed(ctx context.Context, productID int64, price float64) ([]entity.PriceEvent, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	if err := r.s.failure(OpEventsFindArmed); err != nil {
		return nil, err
	}
	var out []entity.PriceEvent
	for _, e := range r.s.st.events {
		if e.ProductID == productID && !e.Triggered && e.TargetPrice != nil && *e.TargetPrice >= price {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *eventRepo) MarkTriggered(ctx context.Context, id int64, at time.Time, message string) (bool, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	prev, ok := r.s.st.events[id]
	if !ok || prev.Triggered {
		return false, nil
	}
	next := prev
	at = at.UTC()
	next.Triggered = true
	next.TriggeredAt = &at
	next.Message = &message
	r.s.st.events[id] = next
	r.s.record(func() { r.s.st.events[id] = prev })
	return true, nil
}

func (r *eventRepo) ListPending(ctx context.Context, ownerID string, limit int) ([]entity.PriceEvent, error) {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	out := []entity.PriceEvent{}
	for _, e := range r.s.st.events {
		p, ok := r.s.st.products[e.ProductID]
		if !ok || p.OwnerID != ownerID || !e.Triggered || e.Acknowledged {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].TriggeredAt, out[j].TriggeredAt
		if ti != nil && tj != nil && !ti.Equal(*tj) {
			return ti.After(*tj)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *eventRepo) Acknowledge(ctx context.Context, id int64, source string) error {
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()

	prev, ok := r.s.st.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := prev
	next.Acknowledged = true
	next.AckSource = &source
	r.s.st.events[id] = next
	r.s.record(func() { r.s.st.events[id] = prev })
	return nil
}
