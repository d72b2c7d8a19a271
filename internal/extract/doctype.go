// Package extract implements the tabular extraction engine for Prosegur
// cash-logistics statements: a row-scanning state machine that classifies
// each row of a raw cell grid and recovers field values whose column
// position varies between documents.
package extract

import "strings"

// DocType identifies one of the six recognized document kinds.
type DocType string

const (
	// Ledger sub-types (transaction statements).
	DocECATM       DocType = "EC_ATM"
	DocECBanco     DocType = "EC_BANCO"
	DocBultosATM   DocType = "EC_BULTOS_ATM"
	DocBultosBanco DocType = "EC_BULTOS_BCO"

	// Inventory sub-types (denomination counts).
	DocInvATM   DocType = "INV_ATM"
	DocInvBanco DocType = "INV_BCO"
)

// IsInventory reports whether t is one of the denomination-count kinds.
func (t DocType) IsInventory() bool {
	return t == DocInvATM || t == DocInvBanco
}

// DetectDocType routes a file to its document kind by filename prefix.
// The prefixes follow the export naming convention of the source system.
func DetectDocType(filename string) (DocType, bool) {
	name := strings.ToUpper(filename)
	switch {
	case strings.HasPrefix(name, "EC_BULTOS_ATM"):
		return DocBultosATM, true
	case strings.HasPrefix(name, "EC_BULTOS_BCO"), strings.HasPrefix(name, "EC_BULTOS_BANCO"):
		return DocBultosBanco, true
	case strings.HasPrefix(name, "EC_ATM"):
		return DocECATM, true
	case strings.HasPrefix(name, "EC_BANCO"), strings.HasPrefix(name, "EC_BCO"):
		return DocECBanco, true
	case strings.HasPrefix(name, "INV_BILLETES_ATM"), strings.HasPrefix(name, "INV_ATM"):
		return DocInvATM, true
	case strings.HasPrefix(name, "INV_BILLETES_BANCO"), strings.HasPrefix(name, "INV_BCO"), strings.HasPrefix(name, "INV_BANCO"):
		return DocInvBanco, true
	}
	return "", false
}

// Columns returns the fixed output column order for a document kind.
// The assembler guarantees every output table carries exactly these
// columns in exactly this order.
func Columns(t DocType) []string {
	switch t {
	case DocECATM:
		return []string{
			"FECHA", "SUCURSAL", "RECIBO", "BULTOS", "GUARANIES", "DOLARES",
			"ING_EGR", "CLASIFICACION", "FECHA_ARCHIVO", "MOTIVO_MOVIMIENTO",
			"AGENCIA", "SALDO_ANTERIOR_PYG", "SALDO_ANTERIOR_USD",
		}
	case DocECBanco:
		return []string{
			"FECHA", "SUCURSAL", "RECIBO", "BULTOS", "IMPORTE", "MONEDA",
			"ING_EGR", "CLASIFICACION", "FECHA_ARCHIVO", "MOTIVO_MOVIMIENTO",
			"AGENCIA", "HOJA_ORIGEN", "SALDO_ANTERIOR",
		}
	case DocBultosATM:
		return []string{
			"FECHA", "SUCURSAL", "RECIBO", "BULTOS", "MONEDA", "IMPORTE",
			"ING_EGR", "CLASIFICACION", "FECHA_ARCHIVO", "MOTIVO_MOVIMIENTO",
			"AGENCIA", "SALDO_ANTERIOR_PYG", "SALDO_ANTERIOR_USD",
		}
	case DocBultosBanco:
		return []string{
			"FECHA", "SUCURSAL", "RECIBO", "BULTOS", "MONEDA", "IMPORTE",
			"ING_EGR", "CLASIFICACION", "FECHA_ARCHIVO", "MOTIVO_MOVIMIENTO",
			"AGENCIA", "SALDO_ANTERIOR",
		}
	case DocInvATM, DocInvBanco:
		return []string{
			"FECHA_INVENTARIO", "DIVISA", "AGENCIA", "AGRUPACION_EFECTIVO",
			"TIPO_VALOR", "DENOMINACION", "DEPOSITO", "CJE_DEP", "CANJE",
			"MONEDA", "IMPORTE_TOTAL",
		}
	}
	return nil
}
