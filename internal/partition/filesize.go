package partition

// Parquet output sizing. The estimate is linear in the raw row bytes with a
// fixed compression factor; files estimated above the target ceiling are
// split so every output stays under it.
const (
	// DefaultTargetFileSizeBytes is the split ceiling for one output file.
	DefaultTargetFileSizeBytes = 20 * 1024 * 1024
	// DefaultCompressionFactor is the assumed parquet compression ratio
	// applied to raw row bytes.
	DefaultCompressionFactor = 0.5
)

// FileSizeOptimizer estimates output sizes and recommends splits.
type FileSizeOptimizer struct {
	targetBytes       int64
	compressionFactor float64
}

// NewFileSizeOptimizer creates an optimizer with the documented defaults.
func NewFileSizeOptimizer() *FileSizeOptimizer {
	return &FileSizeOptimizer{
		targetBytes:       DefaultTargetFileSizeBytes,
		compressionFactor: DefaultCompressionFactor,
	}
}

// EstimateParquetSize returns the estimated compressed output size for
// rowCount rows of avgRowSizeBytes each.
func (o *FileSizeOptimizer) EstimateParquetSize(rowCount, avgRowSizeBytes int64) int64 {
	if rowCount <= 0 || avgRowSizeBytes <= 0 {
		return 0
	}
	return int64(float64(rowCount*avgRowSizeBytes) * o.compressionFactor)
}

// ShouldSplitFile reports whether the estimated output exceeds the target
// ceiling.
func (o *FileSizeOptimizer) ShouldSplitFile(rowCount, avgRowSizeBytes int64) bool {
	return o.EstimateParquetSize(rowCount, avgRowSizeBytes) > o.targetBytes
}

// SplitRecommendation describes how to divide a too-large output.
type SplitRecommendation struct {
	Splits            int   `json:"splits"`
	RowsPerSplit      int64 `json:"rows_per_split"`
	EstimatedPerSplit int64 `json:"estimated_bytes_per_split"`
}

// RecommendSplitStrategy returns the number of splits and rows per split
// needed to keep every output under the ceiling.
func (o *FileSizeOptimizer) RecommendSplitStrategy(rowCount, avgRowSizeBytes int64) SplitRecommendation {
	estimate := o.EstimateParquetSize(rowCount, avgRowSizeBytes)
	if estimate <= o.targetBytes {
		return SplitRecommendation{Splits: 1, RowsPerSplit: rowCount, EstimatedPerSplit: estimate}
	}

	splits := int((estimate + o.targetBytes - 1) / o.targetBytes)
	rowsPerSplit := (rowCount + int64(splits) - 1) / int64(splits)

	return SplitRecommendation{
		Splits:            splits,
		RowsPerSplit:      rowsPerSplit,
		EstimatedPerSplit: o.EstimateParquetSize(rowsPerSplit, avgRowSizeBytes),
	}
}
