package sensors

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/tpfanctl/internal/errors"
)

// Parser turns `sensors -j` output into temperatures. It holds no state
// besides its schema and is safe for concurrent use.
type Parser struct {
	schema Schema
}

// NewParser creates a parser, filling in schema defaults where empty.
func NewParser(schema Schema) *Parser {
	return &Parser{schema: schema.withDefaults()}
}

// Temperatures parses every core and the aggregate average.
func (p *Parser) Temperatures(raw []byte) (Temperatures, error) {
	errFactory := errors.New()

	entries, err := p.chip(raw)
	if err != nil {
		return Temperatures{}, err
	}

	keys, err := p.coreKeys(entries)
	if err != nil {
		return Temperatures{}, err
	}

	res := Temperatures{Cores: make(map[uint8]CoreTemperature, len(keys))}
	for id, key := range keys {
		core, err := p.core(entries[key], id)
		if err != nil {
			return Temperatures{}, err
		}
		res.Cores[id] = core
	}

	if pkg, ok := entries[p.schema.PackageKey]; ok {
		fields, err := p.fields(pkg, p.schema.PackageKey)
		if err != nil {
			return Temperatures{}, err
		}
		avg, err := p.reading(fields, p.schema.PackageKey, p.schema.PackageField)
		if err != nil {
			return Temperatures{}, err
		}
		res.Avg = avg

		return res, nil
	}

	if len(res.Cores) == 0 {
		return Temperatures{}, errFactory.WithDescription(errors.ErrGeneric,
			"no CPU cores reported under "+strconv.Quote(p.schema.Chip))
	}

	sum := 0
	for _, c := range res.Cores {
		sum += int(c.Temp)
	}
	res.Avg = uint8(sum / len(res.Cores))

	return res, nil
}

// CoreTemperature parses a single core's readings.
func (p *Parser) CoreTemperature(raw []byte, id uint8) (CoreTemperature, error) {
	entries, err := p.chip(raw)
	if err != nil {
		return CoreTemperature{}, err
	}

	keys, err := p.coreKeys(entries)
	if err != nil {
		return CoreTemperature{}, err
	}

	key, ok := keys[id]
	if !ok {
		return CoreTemperature{}, errors.New().WithDescription(errors.ErrInvalidValue,
			fmt.Sprintf("Core %d is not valid!", id))
	}

	return p.core(entries[key], id)
}

// Cores returns the indices of every core in ascending order.
func (p *Parser) Cores(raw []byte) ([]uint8, error) {
	entries, err := p.chip(raw)
	if err != nil {
		return nil, err
	}

	keys, err := p.coreKeys(entries)
	if err != nil {
		return nil, err
	}

	ids := make([]uint8, 0, len(keys))
	for id := range keys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (p *Parser) chip(raw []byte) (map[string]json.RawMessage, error) {
	errFactory := errors.New()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errFactory.WithDescription(errors.ErrGeneric, "failed to parse sensors output: "+err.Error())
	}

	section, ok := doc[p.schema.Chip]
	if !ok {
		return nil, errFactory.WithDescription(errors.ErrGeneric,
			"sensor chip "+strconv.Quote(p.schema.Chip)+" not found in sensors output")
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(section, &entries); err != nil || entries == nil {
		return nil, errFactory.WithDescription(errors.ErrGeneric,
			"sensor chip "+strconv.Quote(p.schema.Chip)+" is not an object")
	}

	return entries, nil
}

// coreKeys maps every core index to its entry key. Two keys naming the same
// index, such as "Core 1" and "Core 01", are rejected.
func (p *Parser) coreKeys(entries map[string]json.RawMessage) (map[uint8]string, error) {
	keys := make(map[uint8]string)
	for key := range entries {
		id, ok := p.coreID(key)
		if !ok {
			continue
		}
		if prev, dup := keys[id]; dup {
			first, second := prev, key
			if second < first {
				first, second = second, first
			}
			return nil, errors.New().WithDescription(errors.ErrGeneric,
				fmt.Sprintf("core %d reported twice (%q and %q)", id, first, second))
		}
		keys[id] = key
	}

	return keys, nil
}

func (p *Parser) coreID(key string) (uint8, bool) {
	rest, ok := strings.CutPrefix(key, p.schema.CorePrefix)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseUint(rest, 10, 8)
	if err != nil {
		return 0, false
	}

	return uint8(id), true
}

func (p *Parser) core(value json.RawMessage, id uint8) (CoreTemperature, error) {
	name := p.schema.CorePrefix + strconv.Itoa(int(id))

	fields, err := p.fields(value, name)
	if err != nil {
		return CoreTemperature{}, err
	}

	var c CoreTemperature
	if c.Temp, err = p.reading(fields, name, p.schema.field(id, "input")); err != nil {
		return CoreTemperature{}, err
	}
	if c.Max, err = p.reading(fields, name, p.schema.field(id, "max")); err != nil {
		return CoreTemperature{}, err
	}
	if c.Critical, err = p.reading(fields, name, p.schema.field(id, "crit")); err != nil {
		return CoreTemperature{}, err
	}

	return c, nil
}

func (p *Parser) fields(value json.RawMessage, name string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
		return nil, errors.New().WithDescription(errors.ErrGeneric, strconv.Quote(name)+" is not an object")
	}

	return fields, nil
}

func (p *Parser) reading(fields map[string]json.RawMessage, name, field string) (uint8, error) {
	errFactory := errors.New()

	raw, ok := fields[field]
	if !ok {
		return 0, errFactory.WithDescription(errors.ErrGeneric,
			fmt.Sprintf("%q has no %q reading", name, field))
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || string(raw) == "null" {
		return 0, errFactory.WithDescription(errors.ErrGeneric,
			fmt.Sprintf("%q reading %q is not a number", name, field))
	}

	return truncate(v), nil
}

// truncate drops the fractional part and clamps to the uint8 range.
func truncate(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint8:
		return math.MaxUint8
	default:
		return uint8(v)
	}
}
