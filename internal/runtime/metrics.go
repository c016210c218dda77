package runtime

// SpaceMetrics adapts an ImmixSpace's accumulated counters into the
// MetricFunc shape metrics_exporter.go's text-exposition server expects.
// Grounded on the teacher's MetricsCollector (the now-removed metrics.go),
// trimmed from a general per-region latency/fragmentation subsystem down
// to the counters this core actually tracks: collections, cycle
// collections, evacuations, reclaimed blocks, and OOM events.
func SpaceMetrics(sp *ImmixSpace) MetricFunc {
	return func() map[string]float64 {
		s := sp.Stats()

		return map[string]float64{
			"collections_total":       float64(s.CollectionsRun),
			"cycle_collections_total": float64(s.CycleCollectionsRun),
			"evacuations_total":       float64(s.EvacuationsRun),
			"blocks_reclaimed_total":  float64(s.BlocksReclaimed),
			"oom_events_total":        float64(s.OOMEvents),
			"blocks_available":        float64(sp.blocks.AvailableBlocks()),
			"blocks_total":             float64(sp.blocks.TotalBlocks()),
			"headroom_blocks":          float64(sp.HeadroomLen()),
		}
	}
}

// RCMetrics adapts an RCCollector's counters into a MetricFunc.
func RCMetrics(rc *RCCollector) MetricFunc {
	return func() map[string]float64 {
		s := rc.Stats()

		return map[string]float64{
			"write_barrier_fires_total": float64(s.WriteBarrierFires),
			"objects_incremented_total": float64(s.ObjectsIncremented),
			"objects_decremented_total": float64(s.ObjectsDecremented),
			"objects_freed_total":       float64(s.ObjectsFreed),
			"evac_on_increment_total":   float64(s.EvacuationsOnIncrement),
		}
	}
}

// AllocatorMetrics adapts a BlockAllocator's counters into a MetricFunc.
func AllocatorMetrics(ba *BlockAllocator) MetricFunc {
	return func() map[string]float64 {
		s := ba.Stats()

		return map[string]float64{
			"total_blocks":     float64(s.TotalBlocks),
			"free_blocks":      float64(s.FreeBlocks),
			"allocated_blocks": float64(s.AllocatedBlocks),
			"get_count_total":  float64(s.GetCount),
			"return_count_total": float64(s.ReturnCount),
		}
	}
}
