package sprite

import "fmt"

// FlushStats describes the work done by the last End.
type FlushStats struct {
	// Sprites is the number of entries drawn.
	Sprites int

	// Runs is the number of texture changes plus one.
	Runs int

	// DrawCalls is the number of DrawIndexed calls.
	DrawCalls int
}

func (s FlushStats) String() string {
	return fmt.Sprintf("FlushStats{sprites=%d runs=%d draws=%d}", s.Sprites, s.Runs, s.DrawCalls)
}

// flush sorts the queue and draws it in texture runs.
func (b *Batch) flush() (FlushStats, error) {
	var stats FlushStats
	q := b.queue
	n := q.len()
	if n == 0 {
		return stats, nil
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	order := q.sort(b.session.SortMode)
	id := func(i int) uint64 {
		if order != nil {
			return q.textures[order[i]].ID
		}
		return q.textures[i].ID
	}

	start := 0
	for i := 1; i <= n; i++ {
		if i < n && id(i) == id(start) {
			continue
		}
		if err := b.flushRun(order, start, i, &stats); err != nil {
			return stats, err
		}
		stats.Runs++
		start = i
	}
	stats.Sprites = n
	return stats, nil
}

// flushRun draws entries [start, end) of one texture in sub-batches of at
// most MaxBatchSize.
func (b *Batch) flushRun(order []int32, start, end int, stats *FlushStats) error {
	first := start
	if order != nil {
		first = int(order[start])
	}
	binding := b.queue.textures[first].Binding

	for s := start; s < end; s += b.config.MaxBatchSize {
		e := min(s+b.config.MaxBatchSize, end)
		if err := b.drawSubBatch(binding, order, s, e); err != nil {
			return err
		}
		stats.DrawCalls++
	}
	return nil
}

// drawSubBatch maps, fills, unmaps and draws one sub-batch while holding
// the device lock.
func (b *Batch) drawSubBatch(binding any, order []int32, start, end int) error {
	b.resources.mu.Lock()
	defer b.resources.mu.Unlock()

	count := end - start
	if err := b.fill(order, start, end); err != nil {
		return err
	}
	if err := b.device.BindTexture(binding); err != nil {
		return fmt.Errorf("sprite: bind texture: %w", err)
	}
	if err := b.device.DrawIndexed(count*IndicesPerSprite, 0, 0); err != nil {
		return fmt.Errorf("sprite: draw %d sprites: %w", count, err)
	}
	return nil
}

// fill writes the vertices of [start, end) into the mapped vertex buffer.
// The buffer is unmapped on every path.
func (b *Batch) fill(order []int32, start, end int) (err error) {
	count := end - start
	vertices, err := b.device.MapVertices(count * VerticesPerSprite)
	if err != nil {
		return fmt.Errorf("sprite: map vertices: %w", err)
	}
	defer func() {
		if uerr := b.device.UnmapVertices(); uerr != nil && err == nil {
			err = fmt.Errorf("sprite: unmap vertices: %w", uerr)
		}
	}()

	q := b.queue
	half := b.session.HalfTexel
	if count <= b.config.ParallelThreshold {
		q.fillVertices(vertices, order, start, end, half)
		return nil
	}

	mid := start + count/2
	split := (mid - start) * VerticesPerSprite
	b.pool.ExecuteAll(
		func() { q.fillVertices(vertices[:split], order, start, mid, half) },
		func() { q.fillVertices(vertices[split:], order, mid, end, half) },
	)
	return nil
}
