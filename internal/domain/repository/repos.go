package repository

// Repos agrupa los repositorios atados a una misma transacción.
// Lo construye el TxRunner de infraestructura para cada unidad atómica.
type Repos struct {
	Products    ProductRepository
	Ledger      StockLedgerRepository
	Documents   DocumentRepository
	Returns     ReturnRepository
	EditHistory EditHistoryRepository
	Series      NumberSeriesRepository
	Settings    TenantSettingsRepository
}
