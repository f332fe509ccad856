package observability

const (
	MInventoryOps        MetricKey = "inventory_operations_total"
	MInventoryOpDuration MetricKey = "inventory_operation_duration_seconds"
	MSnapshotOps         MetricKey = "snapshot_operations_total"
	MJournalEntries      MetricKey = "journal_entries_total"
)
