// Package queryapi builds the JSON payloads behind the `asdlc query`
// subcommand: tree, bindings, emit-plan, refs, instance, net and
// net-trace, each available at the authored, resolved or emitted stage of
// the pipeline. It reads directly off a driver.Result, so it works equally
// on a fully-rendered compile or one that aborted partway through (ADR-0037:
// inspection never requires a clean compile).
package queryapi

import (
	"fmt"

	"github.com/asdl-lang/asdlc/internal/driver"
	"github.com/asdl-lang/asdlc/internal/viewbind"
)

// SchemaVersion is the query payload schema version.
const SchemaVersion = 1

// Stage selects which pipeline graph a query reads from.
type Stage string

const (
	StageAuthored Stage = "authored"
	StageResolved Stage = "resolved"
	StageEmitted  Stage = "emitted"
)

// Envelope wraps every query payload with its schema version and kind.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	Kind          string `json:"kind"`
	Data          any    `json:"data"`
}

// NotFound is returned when a query's anchor (module/instance/net name)
// does not exist at all at the requested stage; the CLI maps this to exit
// code 1. An empty but valid match (e.g. a net with no endpoints) is not a
// NotFound — it is a normal, empty Data payload and exits 0 (ADR-0037).
type NotFound struct {
	Kind   string
	Anchor string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s: no such %s", e.Anchor, e.Kind)
}

type treeNode struct {
	Emitted  string      `json:"emitted,omitempty"`
	Cell     string      `json:"cell"`
	View     string      `json:"view,omitempty"`
	IsDevice bool        `json:"is_device"`
	Children []*treeNode `json:"children,omitempty"`
}

// Tree returns the realized-module hierarchy rooted at top, DFS
// children-before-parents per the View Binder's own ordering converted back
// to a root-first display tree. Only StageResolved and StageEmitted are
// meaningful, since "authored" has no single resolved top yet.
func Tree(r *driver.Result, stage Stage) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "tree", Anchor: "<top>"}
	}

	top := r.Bound.ByKey[r.Bound.Top.Key()]
	if top == nil {
		return nil, &NotFound{Kind: "tree", Anchor: r.Bound.Top.Key()}
	}

	seen := map[string]bool{}
	node := buildTreeNode(r, top, stage, seen)

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "tree", Data: node}, nil
}

func buildTreeNode(r *driver.Result, bm *viewbind.BoundModule, stage Stage, seen map[string]bool) *treeNode {
	key := bm.Realization.Key()
	n := &treeNode{Cell: bm.Realization.Cell, View: bm.Realization.View, IsDevice: bm.IsDevice}

	if stage == StageEmitted {
		n.Emitted = bm.EmittedName
	}

	if seen[key] {
		return n
	}

	seen[key] = true

	if bm.IsDevice {
		return n
	}

	for _, inst := range bm.Module.Instances {
		ref := bm.Children[inst.Name]

		child := r.Bound.ByKey[ref.Key]
		if child == nil {
			continue
		}

		n.Children = append(n.Children, buildTreeNode(r, child, stage, seen))
	}

	return n
}

// Bindings returns every instantiation site's resolved view.
func Bindings(r *driver.Result) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "bindings", Anchor: "<top>"}
	}

	type entry struct {
		Path string `json:"path"`
		Cell string `json:"cell"`
		View string `json:"view,omitempty"`
	}

	var out []entry

	for _, b := range r.Bound.Bindings {
		out = append(out, entry{Path: b.Path, Cell: b.Cell, View: b.View})
	}

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "bindings", Data: out}, nil
}

// EmitPlan returns the DFS emission order and the realization-to-emitted
// name map.
func EmitPlan(r *driver.Result) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "emit-plan", Anchor: "<top>"}
	}

	type entry struct {
		Realization string `json:"realization"`
		Emitted     string `json:"emitted"`
		IsDevice    bool   `json:"is_device"`
	}

	var out []entry

	for _, m := range r.Bound.Modules {
		out = append(out, entry{Realization: m.Realization.Key(), Emitted: m.EmittedName, IsDevice: m.IsDevice})
	}

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "emit-plan", Data: out}, nil
}

// Refs returns every instance inside moduleKey and what it resolves to.
func Refs(r *driver.Result, moduleKey string) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "refs", Anchor: moduleKey}
	}

	bm, ok := r.Bound.ByKey[moduleKey]
	if !ok {
		return nil, &NotFound{Kind: "refs", Anchor: moduleKey}
	}

	type entry struct {
		Instance string `json:"instance"`
		RefKey   string `json:"ref"`
		IsDevice bool   `json:"is_device"`
	}

	var out []entry

	if !bm.IsDevice {
		for _, inst := range bm.Module.Instances {
			ref := bm.Children[inst.Name]
			out = append(out, entry{Instance: inst.Name, RefKey: ref.Key, IsDevice: ref.IsDevice})
		}
	}

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "refs", Data: out}, nil
}

// Instance returns one instance atom's full detail: name, resolved target,
// parameters and pattern origin.
func Instance(r *driver.Result, moduleKey, instName string) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "instance", Anchor: moduleKey + "/" + instName}
	}

	bm, ok := r.Bound.ByKey[moduleKey]
	if !ok || bm.IsDevice {
		return nil, &NotFound{Kind: "instance", Anchor: moduleKey + "/" + instName}
	}

	for _, inst := range bm.Module.Instances {
		if inst.Name != instName {
			continue
		}

		ref := bm.Children[inst.Name]

		data := map[string]any{
			"name": inst.Name, "ref": ref.Key, "is_device": ref.IsDevice,
			"pattern_origin": inst.Origin,
		}

		if inst.Parameters != nil {
			params := map[string]string{}
			for _, k := range inst.Parameters.Keys() {
				v, _ := inst.Parameters.Get(k)
				params[k] = v.Render()
			}

			data["parameters"] = params
		}

		return &Envelope{SchemaVersion: SchemaVersion, Kind: "instance", Data: data}, nil
	}

	return nil, &NotFound{Kind: "instance", Anchor: moduleKey + "/" + instName}
}

// Net returns one net atom's endpoints within a realized module.
func Net(r *driver.Result, moduleKey, netName string) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "net", Anchor: moduleKey + "/" + netName}
	}

	bm, ok := r.Bound.ByKey[moduleKey]
	if !ok || bm.IsDevice {
		return nil, &NotFound{Kind: "net", Anchor: moduleKey + "/" + netName}
	}

	found := false

	for _, n := range bm.Module.Nets {
		if n.Name == netName {
			found = true

			break
		}
	}

	if !found {
		return nil, &NotFound{Kind: "net", Anchor: moduleKey + "/" + netName}
	}

	type endpoint struct {
		Instance string `json:"instance"`
		Pin      string `json:"pin"`
	}

	var out []endpoint

	for _, ep := range bm.Module.Endpoints {
		if ep.NetName == netName {
			out = append(out, endpoint{Instance: ep.InstName, Pin: ep.PinName})
		}
	}

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "net", Data: out}, nil
}

// NetTrace follows a net across hierarchy boundaries: starting at
// moduleKey/netName, it follows every endpoint that is itself a
// hierarchical instance down into that instance's own realized module,
// reporting the chain of (module, net) hops.
func NetTrace(r *driver.Result, moduleKey, netName string) (*Envelope, error) {
	if r.Bound == nil {
		return nil, &NotFound{Kind: "net-trace", Anchor: moduleKey + "/" + netName}
	}

	type hop struct {
		Module string `json:"module"`
		Net    string `json:"net"`
	}

	var hops []hop

	visited := map[string]bool{}

	cur, net := moduleKey, netName
	for {
		key := cur + "#" + net
		if visited[key] {
			break
		}

		visited[key] = true
		hops = append(hops, hop{Module: cur, Net: net})

		bm, ok := r.Bound.ByKey[cur]
		if !ok || bm.IsDevice {
			break
		}

		next := ""

		for _, ep := range bm.Module.Endpoints {
			if ep.NetName != net {
				continue
			}

			ref, ok := bm.Children[ep.InstName]
			if !ok || ref.IsDevice {
				continue
			}

			child := r.Bound.ByKey[ref.Key]
			if child == nil || child.IsDevice {
				continue
			}

			for _, p := range child.Module.Ports {
				if p == ep.PinName {
					next = ep.PinName

					break
				}
			}

			if next != "" {
				cur, net = ref.Key, next

				break
			}
		}

		if next == "" {
			break
		}
	}

	if len(hops) == 0 {
		return nil, &NotFound{Kind: "net-trace", Anchor: moduleKey + "/" + netName}
	}

	return &Envelope{SchemaVersion: SchemaVersion, Kind: "net-trace", Data: hops}, nil
}
