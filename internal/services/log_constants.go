package services

const (
	LogActionIngestValidate = "INGEST_VALIDATE"
	LogActionQrRender       = "QR_RENDER"
	LogActionBatchWrite     = "BATCH_WRITE"
	LogActionIndexAppend    = "INDEX_APPEND"
	LogActionIndexRebuild   = "INDEX_REBUILD"
	LogActionLookup         = "LOOKUP"
	LogOutcomeSuccess       = "SUCCESS"
	LogOutcomeFail          = "FAIL"
)
