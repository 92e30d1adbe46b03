package postgres

import (
	"context"
	"fmt"
)

// schemaSQL esquema completo. Idempotente: solo crea lo que falta.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS tenant_settings (
	tenant_id                  TEXT PRIMARY KEY,
	tax_lock_days              INT NOT NULL DEFAULT 0,
	operator_edit_window_hours INT NOT NULL DEFAULT 0,
	allow_negative_stock       BOOLEAN NOT NULL DEFAULT FALSE,
	rounding_mode              TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS number_series (
	tenant_id     TEXT NOT NULL,
	series        TEXT NOT NULL,
	prefix        TEXT NOT NULL,
	pattern       TEXT NOT NULL,
	next_sequence BIGINT NOT NULL DEFAULT 1,
	PRIMARY KEY (tenant_id, series)
);

CREATE TABLE IF NOT EXISTS products (
	id              TEXT NOT NULL,
	tenant_id       TEXT NOT NULL,
	name            TEXT NOT NULL,
	sku             TEXT NOT NULL DEFAULT '',
	unit            TEXT NOT NULL DEFAULT '',
	cost_price      NUMERIC(14,2) NOT NULL DEFAULT 0,
	selling_price   NUMERIC(14,2) NOT NULL DEFAULT 0,
	gst_rate        NUMERIC(5,2) NOT NULL DEFAULT 0,
	stock_quantity  NUMERIC(14,3) NOT NULL DEFAULT 0,
	min_stock_level NUMERIC(14,3) NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS products_sku_key ON products (tenant_id, sku) WHERE sku <> '';

CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	tenant_id       TEXT NOT NULL,
	doc_type        TEXT NOT NULL CHECK (doc_type IN ('bill', 'purchase')),
	number          TEXT NOT NULL,
	party_name      TEXT NOT NULL DEFAULT '',
	party_contact   TEXT NOT NULL DEFAULT '',
	subtotal        NUMERIC(14,2) NOT NULL,
	discount_amount NUMERIC(14,2) NOT NULL,
	gst_amount      NUMERIC(14,2) NOT NULL,
	total_amount    NUMERIC(14,2) NOT NULL,
	round_off       NUMERIC(14,2) NOT NULL,
	payment_mode    TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL CHECK (status IN ('completed', 'cancelled', 'draft')),
	tax_suppressed  BOOLEAN NOT NULL DEFAULT FALSE,
	notes           TEXT NOT NULL DEFAULT '',
	is_locked       BOOLEAN NOT NULL DEFAULT FALSE,
	locked_reason   TEXT NOT NULL DEFAULT '',
	locked_by       TEXT NOT NULL DEFAULT '',
	locked_at       TIMESTAMPTZ,
	edit_count      INT NOT NULL DEFAULT 0,
	last_edited_at  TIMESTAMPTZ,
	last_edited_by  TEXT NOT NULL DEFAULT '',
	cancel_reason   TEXT NOT NULL DEFAULT '',
	cancelled_at    TIMESTAMPTZ,
	cancelled_by    TEXT NOT NULL DEFAULT '',
	created_by      TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT documents_number_key UNIQUE (tenant_id, doc_type, number)
);

CREATE TABLE IF NOT EXISTS document_lines (
	id              TEXT PRIMARY KEY,
	document_id     TEXT NOT NULL REFERENCES documents(id),
	tenant_id       TEXT NOT NULL,
	position        INT NOT NULL,
	product_id      TEXT NOT NULL,
	product_name    TEXT NOT NULL,
	sku             TEXT NOT NULL DEFAULT '',
	unit            TEXT NOT NULL DEFAULT '',
	quantity        NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
	unit_price      NUMERIC(14,2) NOT NULL,
	discount_amount NUMERIC(14,2) NOT NULL,
	gst_rate        NUMERIC(5,2) NOT NULL,
	gst_amount      NUMERIC(14,2) NOT NULL,
	line_subtotal   NUMERIC(14,2) NOT NULL,
	line_total      NUMERIC(14,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS document_lines_document_idx ON document_lines (tenant_id, document_id, position);

CREATE TABLE IF NOT EXISTS stock_ledger (
	seq             BIGSERIAL PRIMARY KEY,
	id              TEXT NOT NULL UNIQUE,
	tenant_id       TEXT NOT NULL,
	product_id      TEXT NOT NULL,
	movement_type   TEXT NOT NULL,
	reference_id    TEXT NOT NULL DEFAULT '',
	reference_type  TEXT NOT NULL DEFAULT '',
	quantity_change NUMERIC(14,3) NOT NULL,
	quantity_before NUMERIC(14,3) NOT NULL,
	quantity_after  NUMERIC(14,3) NOT NULL,
	note            TEXT NOT NULL DEFAULT '',
	created_by      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	CHECK (quantity_after = quantity_before + quantity_change)
);
CREATE INDEX IF NOT EXISTS stock_ledger_product_idx ON stock_ledger (tenant_id, product_id, seq);
CREATE INDEX IF NOT EXISTS stock_ledger_reference_idx ON stock_ledger (tenant_id, reference_type, reference_id);

CREATE TABLE IF NOT EXISTS return_documents (
	id              TEXT PRIMARY KEY,
	tenant_id       TEXT NOT NULL,
	return_type     TEXT NOT NULL CHECK (return_type IN ('sales_return', 'purchase_return')),
	number          TEXT NOT NULL,
	parent_id       TEXT NOT NULL REFERENCES documents(id),
	reason          TEXT NOT NULL DEFAULT '',
	subtotal        NUMERIC(14,2) NOT NULL,
	discount_amount NUMERIC(14,2) NOT NULL,
	gst_amount      NUMERIC(14,2) NOT NULL,
	total_amount    NUMERIC(14,2) NOT NULL,
	round_off       NUMERIC(14,2) NOT NULL,
	status          TEXT NOT NULL,
	created_by      TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT return_documents_number_key UNIQUE (tenant_id, return_type, number)
);
CREATE INDEX IF NOT EXISTS return_documents_parent_idx ON return_documents (tenant_id, parent_id);

CREATE TABLE IF NOT EXISTS return_lines (
	id                TEXT PRIMARY KEY,
	return_id         TEXT NOT NULL REFERENCES return_documents(id),
	original_line_id  TEXT NOT NULL REFERENCES document_lines(id) DEFERRABLE INITIALLY DEFERRED,
	product_id        TEXT NOT NULL,
	product_name      TEXT NOT NULL,
	returned_quantity NUMERIC(14,3) NOT NULL CHECK (returned_quantity > 0),
	unit_price        NUMERIC(14,2) NOT NULL,
	discount_amount   NUMERIC(14,2) NOT NULL,
	gst_rate          NUMERIC(5,2) NOT NULL,
	gst_amount        NUMERIC(14,2) NOT NULL,
	line_total        NUMERIC(14,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS return_lines_return_idx ON return_lines (return_id);

CREATE TABLE IF NOT EXISTS edit_history (
	id               TEXT PRIMARY KEY,
	tenant_id        TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	transaction_id   TEXT NOT NULL REFERENCES documents(id),
	edit_number      INT NOT NULL,
	edited_by        TEXT NOT NULL,
	reason           TEXT NOT NULL,
	changes_summary  TEXT NOT NULL DEFAULT '',
	original_data    JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	CONSTRAINT edit_history_number_key UNIQUE (tenant_id, transaction_type, transaction_id, edit_number)
);
`

// EnsureSchema crea las tablas e índices que falten. Pensado para desarrollo (AUTO_MIGRATE=true).
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
