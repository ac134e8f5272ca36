package world

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// decodeCUE evaluates a CUE world document and walks its entities list.
//
// The CUE value must be concrete. Example:
//
//	entities: [
//		{id: "b1", class: "Body", type: "gear", parameters: [0, "Rigid", 3.5], connections: ["j1"]},
//		{id: "j1", class: "Joint", type: "hinge", parameters: [], connections: ["b1"]},
//	]
//
// CUE's own number kinds decide parameter types: int literals become
// IntParam, decimal literals FloatParam.
func decodeCUE(data []byte, source string) (Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := v.Err(); err != nil {
		return Document{}, cueError(source, "", err)
	}

	entitiesVal := v.LookupPath(cue.ParsePath("entities"))
	if !entitiesVal.Exists() {
		return Document{}, &DocumentError{Source: source, Path: "entities", Message: "entities list is required"}
	}

	iter, err := entitiesVal.List()
	if err != nil {
		return Document{}, cueError(source, "entities", err)
	}

	var doc Document
	for i := 0; iter.Next(); i++ {
		ed, err := decodeCUEEntity(iter.Value(), source, fmt.Sprintf("entities[%d]", i))
		if err != nil {
			return Document{}, err
		}
		doc.Entities = append(doc.Entities, ed)
	}
	return doc, nil
}

func decodeCUEEntity(v cue.Value, source, path string) (EntityDoc, error) {
	var ed EntityDoc
	var err error

	if ed.ID, err = cueString(v, "id", true); err != nil {
		return ed, cueError(source, path+".id", err)
	}
	if ed.Class, err = cueString(v, "class", true); err != nil {
		return ed, cueError(source, path+".class", err)
	}
	if ed.Type, err = cueString(v, "type", false); err != nil {
		return ed, cueError(source, path+".type", err)
	}
	if ed.Name, err = cueString(v, "name", false); err != nil {
		return ed, cueError(source, path+".name", err)
	}

	if paramsVal := v.LookupPath(cue.ParsePath("parameters")); paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			return ed, cueError(source, path+".parameters", err)
		}
		for i := 0; iter.Next(); i++ {
			p, err := cueParam(iter.Value())
			if err != nil {
				return ed, cueError(source, fmt.Sprintf("%s.parameters[%d]", path, i), err)
			}
			ed.Parameters = append(ed.Parameters, p)
		}
	}

	if connsVal := v.LookupPath(cue.ParsePath("connections")); connsVal.Exists() {
		iter, err := connsVal.List()
		if err != nil {
			return ed, cueError(source, path+".connections", err)
		}
		for i := 0; iter.Next(); i++ {
			id, err := iter.Value().String()
			if err != nil {
				return ed, cueError(source, fmt.Sprintf("%s.connections[%d]", path, i), err)
			}
			ed.Connections = append(ed.Connections, id)
		}
	}

	return ed, nil
}

func cueString(v cue.Value, field string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return "", fmt.Errorf("%s is required", field)
		}
		return "", nil
	}
	return fv.String()
}

func cueParam(v cue.Value) (Param, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return IntParam(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return FloatParam(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return StringParam(s), nil
	default:
		return nil, fmt.Errorf("unsupported parameter kind: %v", v.IncompleteKind())
	}
}

// cueError converts a CUE error into a DocumentError, keeping the first
// source position when CUE reports one.
func cueError(source, path string, err error) *DocumentError {
	msg := err.Error()
	if errs := errors.Errors(err); len(errs) > 0 {
		first := errs[0]
		msg = first.Error()
		if positions := errors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
			pos := positions[0]
			msg = fmt.Sprintf("%d:%d: %s", pos.Line(), pos.Column(), msg)
		}
	}
	return &DocumentError{Source: source, Path: path, Message: msg}
}
