package table

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// newCatalogGates registers the view/trigger/constraint create/drop
// gates. Per §9's Open Question resolution these are catalog-only: the
// DML gates in dml.go never consult them. A view's stored definition is
// its query_plan-shaped SELECT payload; a trigger's is its event/action
// pair; a constraint's is its kind + column.
func newCatalogGates() []gate.StateGate {
	return []gate.StateGate{
		createViewExecute(), dropViewExecute(),
		createTriggerExecute(), dropTriggerExecute(),
		createConstraintExecute(), dropConstraintExecute(),
	}
}

func createViewExecute() gate.StateGate {
	return gate.StateFunc("create_view_execute",
		func(e gate.Event) *gate.ReadSet {
			return gate.NewReadSet().Ref(viewPath(eventString(e, "view")))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name := eventString(e, "view")
			if !value.IsNull(st.Ref(viewPath(name))) {
				return nil, &gateerr.SchemaError{Message: "view already exists: " + name}
			}
			plan, _ := e.Data.Get("plan")
			mb := gate.NewMutationBatch().Put("view", plan)
			mb.RefSet(viewPath(name), mb.PutIndex())
			mb.Emit(gate.New("view_created", "view", name))
			return mb, nil
		},
	)
}

func dropViewExecute() gate.StateGate {
	return gate.StateFunc("drop_view_execute",
		func(e gate.Event) *gate.ReadSet {
			return gate.NewReadSet().Ref(viewPath(eventString(e, "view")))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name := eventString(e, "view")
			if value.IsNull(st.Ref(viewPath(name))) {
				if eventBool(e, "ifExists") {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("view_dropped", "view", name))
					return mb, nil
				}
				return nil, &gateerr.NotFound{Kind: "view", Name: name}
			}
			mb := gate.NewMutationBatch().RefDelete(viewPath(name))
			mb.Emit(gate.New("view_dropped", "view", name))
			return mb, nil
		},
	)
}

func createTriggerExecute() gate.StateGate {
	return gate.StateFunc("create_trigger_execute",
		func(e gate.Event) *gate.ReadSet {
			return gate.NewReadSet().Ref(triggerPath(eventString(e, "trigger")))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name := eventString(e, "trigger")
			if !value.IsNull(st.Ref(triggerPath(name))) {
				return nil, &gateerr.SchemaError{Message: "trigger already exists: " + name}
			}
			def, _ := e.Data.Get("definition")
			mb := gate.NewMutationBatch().Put("trigger", def)
			mb.RefSet(triggerPath(name), mb.PutIndex())
			mb.Emit(gate.New("trigger_created", "trigger", name))
			return mb, nil
		},
	)
}

func dropTriggerExecute() gate.StateGate {
	return gate.StateFunc("drop_trigger_execute",
		func(e gate.Event) *gate.ReadSet {
			return gate.NewReadSet().Ref(triggerPath(eventString(e, "trigger")))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name := eventString(e, "trigger")
			if value.IsNull(st.Ref(triggerPath(name))) {
				if eventBool(e, "ifExists") {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("trigger_dropped", "trigger", name))
					return mb, nil
				}
				return nil, &gateerr.NotFound{Kind: "trigger", Name: name}
			}
			mb := gate.NewMutationBatch().RefDelete(triggerPath(name))
			mb.Emit(gate.New("trigger_dropped", "trigger", name))
			return mb, nil
		},
	)
}

func createConstraintExecute() gate.StateGate {
	return gate.StateFunc("create_constraint_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			name := eventString(e, "constraint")
			return gate.NewReadSet().Ref(constraintPath(table, name))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			name := eventString(e, "constraint")
			if !value.IsNull(st.Ref(constraintPath(table, name))) {
				return nil, &gateerr.SchemaError{Message: "constraint already exists: " + name}
			}
			def, _ := e.Data.Get("definition")
			mb := gate.NewMutationBatch().Put("constraint", def)
			mb.RefSet(constraintPath(table, name), mb.PutIndex())
			mb.Emit(gate.New("constraint_created", "table", table, "constraint", name))
			return mb, nil
		},
	)
}

func dropConstraintExecute() gate.StateGate {
	return gate.StateFunc("drop_constraint_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			name := eventString(e, "constraint")
			return gate.NewReadSet().Ref(constraintPath(table, name))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			name := eventString(e, "constraint")
			if value.IsNull(st.Ref(constraintPath(table, name))) {
				if eventBool(e, "ifExists") {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("constraint_dropped", "table", table, "constraint", name))
					return mb, nil
				}
				return nil, &gateerr.NotFound{Kind: "constraint", Name: name}
			}
			mb := gate.NewMutationBatch().RefDelete(constraintPath(table, name))
			mb.Emit(gate.New("constraint_dropped", "table", table, "constraint", name))
			return mb, nil
		},
	)
}
