package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/resellkit/research-core/internal/model"
)

// SimConfig tunes the simulated executor.
type SimConfig struct {
	// Seed offsets every derived value. Two executors with the same seed
	// fabricate identical results for the same item.
	Seed uint64
	// Comps forces the comparables count for market tools when positive;
	// zero derives a stable count from the item.
	Comps int
	// FailTools lists tool IDs that fail on every invocation.
	FailTools []string
	// ConflictFields lists fields where low-trust sources report a
	// variant value, manufacturing cross-source disagreement.
	ConflictFields []string
}

// SimExecutor fabricates tool results from the item alone, with no
// network access. Everything derives from a hash of the item and the
// seed, so replays and tests see identical sessions.
type SimExecutor struct {
	cfg       SimConfig
	fail      map[string]bool
	conflicts map[string]bool
}

func NewSimExecutor(cfg SimConfig) *SimExecutor {
	s := &SimExecutor{
		cfg:       cfg,
		fail:      make(map[string]bool, len(cfg.FailTools)),
		conflicts: make(map[string]bool, len(cfg.ConflictFields)),
	}
	for _, id := range cfg.FailTools {
		s.fail[id] = true
	}
	for _, name := range cfg.ConflictFields {
		s.conflicts[name] = true
	}
	return s
}

// Execute fabricates the result of one tool invocation. Tools emit their
// full natural yield, not just the targeted fields; the runner merges
// whatever the item's schema tracks.
func (s *SimExecutor) Execute(_ context.Context, item model.Item, task model.ResearchTask) (*ToolResult, error) {
	if s.fail[task.Tool] {
		return nil, eris.Errorf("sim: tool %s unavailable", task.Tool)
	}

	f := s.facts(item)
	res := &ToolResult{CostUsd: task.EstimatedCost}
	emit := func(field string, src model.SourceType, conf float64, variant bool) {
		v := fieldValue(f, field)
		if v == nil {
			return
		}
		if variant && s.conflicts[field] {
			v = variantOf(v)
		}
		res.Observations = append(res.Observations, Observation{
			Field:  field,
			Source: model.FieldDataSource{SourceType: src, Confidence: conf, RawValue: v},
		})
	}

	switch task.Tool {
	case "barcode_lookup":
		if item.Barcode == "" {
			return nil, eris.New("sim: barcode lookup without a barcode")
		}
		emit("brand", model.SourceUPCDatabase, 0.93, false)
		emit("model", model.SourceUPCDatabase, 0.90, false)
		emit("title", model.SourceUPCDatabase, 0.88, false)
		emit("msrp", model.SourceUPCDatabase, 0.85, false)
		emit("category", model.SourceUPCDatabase, 0.80, false)
	case "vision_analysis":
		emit("brand", model.SourceVisionAnalysis, 0.65, true)
		emit("model", model.SourceVisionAnalysis, 0.55, true)
		emit("color", model.SourceVisionAnalysis, 0.70, true)
		emit("category", model.SourceVisionAnalysis, 0.60, true)
		emit("condition_notes", model.SourceVisionAnalysis, 0.60, true)
	case "ocr_extraction":
		emit("model", model.SourceOCRExtraction, 0.78, false)
		emit("serial_number", model.SourceOCRExtraction, 0.72, false)
		emit("specs", model.SourceOCRExtraction, 0.65, false)
	case "targeted_search":
		emit("title", model.SourceTargetedSearch, 0.82, false)
		emit("msrp", model.SourceTargetedSearch, 0.78, false)
		emit("description", model.SourceTargetedSearch, 0.75, false)
		emit("specs", model.SourceTargetedSearch, 0.72, false)
		emit("weight_g", model.SourceTargetedSearch, 0.70, false)
	case "market_comps":
		emit("market_price", model.SourceEbayAPI, 0.85, false)
		emit("comp_count", model.SourceEbayAPI, 0.80, false)
		emit("price_range", model.SourceEbayAPI, 0.75, false)
		res.Comparables = f.comps
	case "web_search":
		for _, field := range task.TargetFields {
			emit(field, model.SourceWebSearch, 0.55, true)
		}
	default:
		return nil, eris.Errorf("sim: unknown tool %s", task.Tool)
	}
	return res, nil
}

// simFacts is the stable ground truth the executor fabricates per item.
type simFacts struct {
	brand     string
	model     string
	title     string
	category  string
	color     string
	serial    string
	size      string
	material  string
	specs     []string
	msrp      float64
	price     float64
	weightG   float64
	storageGB float64
	comps     int
}

var (
	simColors    = []string{"black", "white", "silver", "gray", "blue", "red"}
	simSizes     = []string{"XS", "S", "M", "L", "XL"}
	simMaterials = []string{"cotton", "leather", "polyester", "wool"}
	simStorage   = []float64{32, 64, 128, 256}
	simSpecs     = []string{"bluetooth 5.0", "usb-c", "rechargeable", "64gb storage", "water resistant", "wifi 6"}
)

func (s *SimExecutor) facts(item model.Item) simFacts {
	h := fnv.New64a()
	h.Write([]byte(item.ID))
	h.Write([]byte{'|'})
	h.Write([]byte(item.Name))
	rng := rand.New(rand.NewSource(int64(s.cfg.Seed ^ h.Sum64())))

	f := simFacts{
		brand:     item.Brand,
		model:     item.Model,
		category:  item.Category,
		color:     simColors[rng.Intn(len(simColors))],
		serial:    fmt.Sprintf("SN-%08d", rng.Intn(100000000)),
		size:      simSizes[rng.Intn(len(simSizes))],
		material:  simMaterials[rng.Intn(len(simMaterials))],
		storageGB: simStorage[rng.Intn(len(simStorage))],
		msrp:      round2(40 + rng.Float64()*760),
		weightG:   round2(100 + rng.Float64()*4900),
		comps:     rng.Intn(15),
	}
	if s.cfg.Comps > 0 {
		f.comps = s.cfg.Comps
	}
	f.price = round2(f.msrp * (0.45 + rng.Float64()*0.25))

	words := strings.Fields(item.Name)
	if f.brand == "" {
		if len(words) > 0 {
			f.brand = words[0]
		} else {
			f.brand = "Generic"
		}
	}
	if f.model == "" {
		if len(words) > 1 {
			f.model = words[1]
		} else {
			f.model = fmt.Sprintf("M-%04d", rng.Intn(10000))
		}
	}
	if f.category == "" {
		f.category = "general"
	}
	if item.Name != "" {
		f.title = item.Name
	} else {
		f.title = f.brand + " " + f.model
	}

	n := 2 + rng.Intn(2)
	start := rng.Intn(len(simSpecs))
	for i := 0; i < n; i++ {
		f.specs = append(f.specs, simSpecs[(start+i)%len(simSpecs)])
	}
	return f
}

// fieldValue maps a schema field to the fabricated ground truth. Unknown
// fields yield nil so the emit path skips them.
func fieldValue(f simFacts, field string) any {
	switch field {
	case "brand":
		return f.brand
	case "model":
		return f.model
	case "title":
		return f.title
	case "category":
		return f.category
	case "color":
		return f.color
	case "serial_number":
		return f.serial
	case "specs":
		return f.specs
	case "description":
		return fmt.Sprintf("%s %s with %s.", f.brand, f.model, strings.Join(f.specs, ", "))
	case "condition_notes":
		return "light wear consistent with normal use"
	case "msrp":
		return f.msrp
	case "market_price":
		return f.price
	case "comp_count":
		return float64(f.comps)
	case "price_range":
		return []float64{round2(f.price * 0.9), round2(f.price * 1.1)}
	case "weight_g":
		return f.weightG
	case "size":
		return f.size
	case "material":
		return f.material
	case "storage_gb":
		return f.storageGB
	default:
		// Specialty fields (lens_mount, megapixels, ...) stay unknown to
		// the sim; sessions hit the manual-input path for them.
		return nil
	}
}

// variantOf skews a value enough to trip conflict detection: strings get
// a suffix that still matches as a minor substring conflict, numbers move
// 35% which lands past the major-severity line.
func variantOf(v any) any {
	switch t := v.(type) {
	case string:
		return t + " deluxe"
	case float64:
		return round2(t * 1.35)
	case []string:
		out := append([]string(nil), t...)
		return append(out, "aftermarket part")
	case []float64:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = round2(x * 1.35)
		}
		return out
	default:
		return v
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
