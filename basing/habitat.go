package basing

import "github.com/datatrails/go-datatrails-keri/sad"

// HabitatRecord is the application state kept for a locally-owned
// identifier, keyed by habitat name in the habs sub-db. It is
// external-facing: nothing in Kever/Kevery reads it, it exists so a
// caller can recover "which name did I register this prefix under".
// See spec.md §4.11, grounded on
// original_source/src/keri/db/basing/habitat_record.rs.
type HabitatRecord struct {
	Hid      string   // own identifier prefix, qb64
	Name     string   // habitat name
	Domain   string   // domain, if any
	Mid      string   // group member identifier qb64, when Hid is a group
	Smids    []string // group signing member identifiers, when Hid is a group
	Rmids    []string // group rotating member identifiers, when Hid is a group
	Sid      string   // signify identifier qb64, when Hid is signify-managed
	Watchers []string // watcher prefixes qb64
}

func habEncode(h *HabitatRecord) ([]byte, error) {
	d := sad.NewDoc()
	d.Set("hid", h.Hid)
	d.Set("name", h.Name)
	d.Set("domain", h.Domain)
	d.Set("mid", h.Mid)
	d.Set("smids", toValues(h.Smids))
	d.Set("rmids", toValues(h.Rmids))
	d.Set("sid", h.Sid)
	d.Set("watchers", toValues(h.Watchers))
	return sad.Dumps(d, sad.KindJSON)
}

func habDecode(raw []byte) (*HabitatRecord, error) {
	d, err := sad.Loads(raw, sad.KindJSON)
	if err != nil {
		return nil, err
	}
	return &HabitatRecord{
		Hid:      d.GetString("hid"),
		Name:     d.GetString("name"),
		Domain:   d.GetString("domain"),
		Mid:      d.GetString("mid"),
		Smids:    fromValues(d, "smids"),
		Rmids:    fromValues(d, "rmids"),
		Sid:      d.GetString("sid"),
		Watchers: fromValues(d, "watchers"),
	}, nil
}

func toValues(ss []string) []sad.Value {
	out := make([]sad.Value, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func fromValues(d *sad.Doc, field string) []string {
	v, ok := d.Get(field)
	if !ok {
		return nil
	}
	list, ok := v.([]sad.Value)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
