package voucher

import "github.com/ginjaninja78/tally-sales-xml/internal/types"

// Group is every record sharing one invoice number.
type Group struct {
	// Key is the invoice number as text. Numeric and text cells with the
	// same rendering share a key.
	Key string

	// Records keeps input order.
	Records []types.Record
}

// First returns the record whose header fields describe the voucher.
func (g Group) First() types.Record {
	return g.Records[0]
}

// GroupByInvoice partitions records by invoice number.
//
// Groups appear in the order their key was first seen, and rows inside a group
// keep input order. Records without an invoice number share the empty key.
func GroupByInvoice(records []types.Record) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, record := range records {
		key := record.Get(types.ColInvoiceNo).String()
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, record)
	}

	return groups
}
