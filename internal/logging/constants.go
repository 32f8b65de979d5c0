package logging

// Field names shared by all log entries.
const (
	FieldFile        = "file_path"
	FieldFormat      = "format"
	FieldRunID       = "run_id"
	FieldLine        = "line"
	FieldRow         = "row"
	FieldBlock       = "block"
	FieldRule        = "rule"
	FieldPayee       = "payee"
	FieldCategory    = "category"
	FieldMode        = "mode"
	FieldMarker      = "marker"
	FieldCount       = "count"
	FieldSkipped     = "skipped"
	FieldDelimiter   = "delimiter"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
	FieldDescription = "description"
	FieldStrategy    = "strategy"
)
