package preset

import (
	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/world"
)

// Warning is a non-fatal validation finding. Pass and Layer are indices into
// the document (-1 when the warning is document-level), Field names the wire
// field involved.
type Warning struct {
	Code    errors.Code `json:"code"`
	Pass    int         `json:"pass"`
	Layer   int         `json:"layer"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// Outcome is the full result of validating a document. OK is false exactly
// when Err is non-nil. Warnings are retained even on failure so the UI can
// show everything found up to the fatal error.
type Outcome struct {
	OK       bool      `json:"ok"`
	Warnings []Warning `json:"warnings,omitempty"`
	Err      *errors.Error
}

// validator accumulates warnings while walking a document.
type validator struct {
	reg world.Registry
	out Outcome
}

func (v *validator) warn(code errors.Code, pass, layer int, field, msg string) {
	v.out.Warnings = append(v.out.Warnings, Warning{
		Code: code, Pass: pass, Layer: layer, Field: field, Message: msg,
	})
}

// optInt substitutes the mode default for a missing optional field,
// recording a warning.
func (v *validator) optInt(val *int, def int, pass, layer int, field string) int {
	if val == nil {
		v.warn(errors.ErrCodeMissingOptional, pass, layer, field,
			field+" missing, using default")
		return def
	}
	return *val
}

func (v *validator) optFloat(val *float64, def float64, pass, layer int, field string) float64 {
	if val == nil {
		v.warn(errors.ErrCodeMissingOptional, pass, layer, field,
			field+" missing, using default")
		return def
	}
	return *val
}

func (v *validator) optBool(val *bool, def bool, pass, layer int, field string) bool {
	if val == nil {
		v.warn(errors.ErrCodeMissingOptional, pass, layer, field,
			field+" missing, using default")
		return def
	}
	return *val
}

// Validate checks a document against the engine schema and, on success,
// returns the resolved preset with all defaults applied.
//
// Checks run in a fixed order: schema version, per-pass required fields,
// per-layer mode and material, then per-field constraints. The first fatal
// finding stops validation; warnings accumulated before it are kept in the
// outcome.
func Validate(doc *Document, reg world.Registry) (*Preset, Outcome) {
	v := &validator{reg: reg, out: Outcome{OK: true}}

	p, err := v.run(doc)
	if err != nil {
		v.out.OK = false
		v.out.Err = err
		return nil, v.out
	}
	return p, v.out
}

func (v *validator) run(doc *Document) (*Preset, *errors.Error) {
	if doc.VersionMajor == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "versionMajor is required")
	}
	if *doc.VersionMajor > EngineMajor {
		minor := 0
		if doc.VersionMinor != nil {
			minor = *doc.VersionMinor
		}
		return nil, errors.New(errors.ErrCodeSchemaTooNew,
			"preset schema %d.%d is newer than engine schema %d.%d",
			*doc.VersionMajor, minor, EngineMajor, EngineMinor)
	}
	if doc.VersionMinor == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "versionMinor is required")
	}
	if *doc.VersionMajor == EngineMajor && *doc.VersionMinor > EngineMinor {
		v.warn(errors.ErrCodeSchemaNewerMinor, -1, -1, "versionMinor",
			"preset was written for a newer engine; unknown fields will be ignored")
	}

	p := &Preset{
		Major:  *doc.VersionMajor,
		Minor:  *doc.VersionMinor,
		Passes: make([]Pass, len(doc.Passes)),
	}

	for i, pd := range doc.Passes {
		pass, err := v.pass(i, pd)
		if err != nil {
			return nil, err
		}
		p.Passes[i] = pass
	}
	return p, nil
}

func (v *validator) pass(i int, pd PassDoc) (Pass, *errors.Error) {
	if pd.Bottom == nil {
		return Pass{}, errors.New(errors.ErrCodeMissingField, "pass %d: bottom is required", i)
	}
	if pd.SettleTime == nil {
		return Pass{}, errors.New(errors.ErrCodeMissingField, "pass %d: settleTime is required", i)
	}
	if *pd.SettleTime < 0 {
		return Pass{}, errors.New(errors.ErrCodeOutOfRange,
			"pass %d: settleTime = %d, must be >= 0", i, *pd.SettleTime)
	}
	if pd.Layers == nil {
		return Pass{}, errors.New(errors.ErrCodeMissingField, "pass %d: layers is required", i)
	}

	pass := Pass{
		Bottom:        *pd.Bottom,
		SettleTime:    *pd.SettleTime,
		GravitySolids: v.optBool(pd.AddGravityToSolids, DefaultGravitySolids, i, -1, "addGravityToSolids"),
		Layers:        make([]Layer, len(pd.Layers)),
	}

	for j, ld := range pd.Layers {
		layer, err := v.layer(i, j, ld)
		if err != nil {
			return Pass{}, err
		}
		pass.Layers[j] = layer
	}
	return pass, nil
}

func (v *validator) layer(i, j int, ld LayerDoc) (Layer, *errors.Error) {
	if ld.Mode == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "pass %d layer %d: mode is required", i, j)
	}
	if ld.Type == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "pass %d layer %d: type is required", i, j)
	}

	mat, err := v.reg.Resolve(*ld.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDisallowed, err,
			"pass %d layer %d: type %q", i, j, *ld.Type)
	}

	switch Mode(*ld.Mode) {
	case ModeUniform, ModePadded:
		return v.stackedLayer(i, j, ld, mat)
	case ModeVein:
		return v.veinLayer(i, j, ld, mat)
	case ModeReplace:
		return v.replaceLayer(i, j, ld, mat)
	default:
		return nil, errors.New(errors.ErrCodeUnknownMode,
			"pass %d layer %d: mode %d is not a known layer mode", i, j, *ld.Mode)
	}
}

func (v *validator) stackedLayer(i, j int, ld LayerDoc, mat world.MaterialID) (Layer, *errors.Error) {
	thickness := v.optInt(ld.Thickness, DefaultThickness, i, j, "thickness")
	variation := v.optInt(ld.Variation, DefaultVariation, i, j, "variation")

	if thickness < 0 || thickness > MaxThickness {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: thickness = %d, must be in [0, %d]", i, j, thickness, MaxThickness)
	}
	if variation < 0 || variation > MaxVariation {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: variation = %d, must be in [0, %d]", i, j, variation, MaxVariation)
	}

	if Mode(*ld.Mode) == ModePadded {
		return Padded{Material: mat, Thickness: thickness, Variation: variation}, nil
	}
	return Uniform{Material: mat, Thickness: thickness, Variation: variation}, nil
}

func (v *validator) veinLayer(i, j int, ld LayerDoc, mat world.MaterialID) (Layer, *errors.Error) {
	minY := v.optInt(ld.MinY, DefaultVeinMinY, i, j, "minY")
	maxY := v.optInt(ld.MaxY, DefaultVeinMaxY, i, j, "maxY")
	width := v.optInt(ld.Width, DefaultVeinWidth, i, j, "width")
	height := v.optInt(ld.Height, DefaultVeinHeight, i, j, "height")
	count := v.optInt(ld.Count, DefaultVeinCount, i, j, "count")

	if minY > maxY {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: minY = %d > maxY = %d", i, j, minY, maxY)
	}
	if width < MinVeinExtent || width > MaxVeinExtent {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: width = %d, must be in [%d, %d]", i, j, width, MinVeinExtent, MaxVeinExtent)
	}
	if height < MinVeinExtent || height > MaxVeinExtent {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: height = %d, must be in [%d, %d]", i, j, height, MinVeinExtent, MaxVeinExtent)
	}
	if count < 0 || count > MaxVeinCount {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: count = %d, must be in [0, %d]", i, j, count, MaxVeinCount)
	}

	return Vein{Material: mat, MinY: minY, MaxY: maxY, Width: width, Height: height, Count: count}, nil
}

func (v *validator) replaceLayer(i, j int, ld LayerDoc, mat world.MaterialID) (Layer, *errors.Error) {
	newMat := mat
	if ld.NewType == nil {
		v.warn(errors.ErrCodeMissingOptional, i, j, "newType", "newType missing, using default")
	} else {
		resolved, err := v.reg.Resolve(*ld.NewType)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDisallowed, err,
				"pass %d layer %d: newType %q", i, j, *ld.NewType)
		}
		newMat = resolved
	}

	percent := v.optFloat(ld.Percent, DefaultPercent, i, j, "percent")
	if percent < 0 || percent > 100 {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"pass %d layer %d: percent = %v, must be in [0, 100]", i, j, percent)
	}

	return Replace{
		Old:           mat,
		New:           newMat,
		Percent:       percent,
		InExisting:    v.optBool(ld.InExisting, DefaultInExisting, i, j, "inExisting"),
		InLayer:       v.optBool(ld.InLayer, DefaultInLayer, i, j, "inLayer"),
		PreserveProps: v.optBool(ld.PreserveProps, DefaultPreserveProps, i, j, "preserveProps"),
	}, nil
}
