package workflow

import "github.com/gfbarbieri/coffer/internal/fund/domain"

// SerializeBills projects every bill in the store into its transport
// record. This projection is the only supported path for carrying bills
// across fund instances: updateFund reads it from the old instance and
// re-submits it to the new one.
//
// The record shape is asymmetric on purpose (see domain.BillRecord): a
// one-time bill's timing travels as due_date while a recurring bill's
// termination travels as end_date, so consumers branch on the recurring
// flag.
func SerializeBills(store FundStore) []domain.BillRecord {
	bills := store.GetBills()
	records := make([]domain.BillRecord, len(bills))
	for i, b := range bills {
		records[i] = domain.RecordFromBill(b)
	}
	return records
}
