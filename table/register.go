package table

import "github.com/gatedb/gatedb/gate"

// Register registers every gate this package defines onto reg: the
// transaction-lifecycle placeholders, the DDL and DML gates of §4.K,
// the index gates of §4.L, and the catalog-only view/trigger/
// constraint gates.
func Register(reg *gate.Registry) error {
	var gates []gate.StateGate
	gates = append(gates, transactionGates()...)
	gates = append(gates, newDDLGates()...)
	gates = append(gates, newDMLGates()...)
	gates = append(gates, newIndexGates()...)
	gates = append(gates, newCatalogGates()...)

	for _, g := range gates {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}
