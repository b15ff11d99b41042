package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/partcam/internal/model"
)

// thicknessTol is the slack allowed when matching stock thickness against a
// material group.
const thicknessTol = 0.01

// Nester runs the 2D bin-packing pass. One Nester handles one material
// group at a time; NestAll fans groups out concurrently.
type Nester struct {
	Config model.NestingConfig

	// Exclusions are keep-out zones on the machine bed, in sheet
	// coordinates. They are subtracted from every sheet before packing.
	Exclusions []model.Rect
}

func New(cfg model.NestingConfig) *Nester {
	return &Nester{Config: cfg}
}

// NestAll groups parts by material and thickness and nests each group on
// its own goroutine. Group results come back in the deterministic order
// produced by model.GroupParts regardless of which goroutine finished
// first.
func (n *Nester) NestAll(ctx context.Context, parts []model.Part, stocks []model.StockSheet) ([]model.MaterialGroupResult, error) {
	groups := model.GroupParts(parts)
	results := make([]model.MaterialGroupResult, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = model.MaterialGroupResult{
				Material:  grp.Material,
				Thickness: grp.Thickness,
				Result:    n.Nest(grp.Parts, StocksFor(grp, stocks)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Nest packs one material group onto sheets. When the project carries
// stock sheets the pool is finite; otherwise sheets of the configured
// size are drawn as needed. Parts that fit nowhere are returned in
// Unplaced, never dropped.
func (n *Nester) Nest(parts []model.Part, stocks []model.StockSheet) model.NestingResult {
	if n.Config.Strategy == model.StrategyGenetic {
		return n.nestGenetic(parts, stocks)
	}
	return n.nestGuillotine(parts, stocks)
}

func (n *Nester) nestGuillotine(parts []model.Part, stocks []model.StockSheet) model.NestingResult {
	instances := expandParts(parts)
	sortInstances(instances)
	return n.packFirstFit(instances, expandStocks(stocks))
}

// orientHint tells the placer which orientation to try first. The zero
// value lets the placer pick whichever orientation wastes less space.
type orientHint int

const (
	orientAuto orientHint = iota
	orientNormalFirst
	orientRotatedFirst
)

// instance is one physical copy of a part after quantity expansion.
type instance struct {
	part    model.Part
	placeID string
	orient  orientHint
}

// expandParts flattens quantities into individual instances. Placement ids
// are derived from the part id and copy number so repeated runs over the
// same project name the same pieces.
func expandParts(parts []model.Part) []instance {
	var out []instance
	for _, p := range parts {
		for i := 0; i < p.Quantity; i++ {
			cp := p
			cp.Quantity = 1
			out = append(out, instance{
				part:    cp,
				placeID: fmt.Sprintf("%s-%d", p.ID, i+1),
			})
		}
	}
	return out
}

// sortInstances orders candidates largest first: by area, then by longest
// side, then by label. The stable sort keeps input order for full ties so
// packing stays reproducible.
func sortInstances(instances []instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		ai, aj := instances[i].part.Area(), instances[j].part.Area()
		if ai != aj {
			return ai > aj
		}
		mi, mj := instances[i].part.MaxDim(), instances[j].part.MaxDim()
		if mi != mj {
			return mi > mj
		}
		return instances[i].part.Label < instances[j].part.Label
	})
}

func expandStocks(stocks []model.StockSheet) []model.StockSheet {
	var pool []model.StockSheet
	for _, s := range stocks {
		for i := 0; i < s.Quantity; i++ {
			cp := s
			cp.Quantity = 1
			pool = append(pool, cp)
		}
	}
	return pool
}

// StocksFor filters stock sheets down to those usable by a material group.
// Stocks with an empty material or zero thickness are universal.
func StocksFor(group model.MaterialGroup, stocks []model.StockSheet) []model.StockSheet {
	var out []model.StockSheet
	for _, s := range stocks {
		if s.Material != "" && group.Material != "" && s.Material != group.Material {
			continue
		}
		if s.Thickness > 0 && group.Thickness > 0 &&
			math.Abs(s.Thickness-group.Thickness) > thicknessTol {
			continue
		}
		out = append(out, s)
	}
	return out
}

// openSheet is a sheet currently accepting parts.
type openSheet struct {
	stock  model.StockSheet
	layout model.SheetLayout
	packer *guillotinePacker
}

// packFirstFit places instances in order. Each instance goes onto the
// first open sheet with room for it; a new sheet is opened only when no
// open sheet has room. An opened sheet always receives the instance that
// forced it open, so empty sheets never reach the result.
func (n *Nester) packFirstFit(instances []instance, pool []model.StockSheet) model.NestingResult {
	unlimited := len(pool) == 0

	var sheets []*openSheet
	var unplaced []model.Part

	for idx, inst := range instances {
		placed := false
		for _, sh := range sheets {
			if n.tryPlace(sh, inst) {
				placed = true
				break
			}
		}
		if !placed {
			var sh *openSheet
			sh, pool = n.openSheetFor(inst, instances[idx:], pool, unlimited)
			if sh != nil {
				sheets = append(sheets, sh)
				placed = n.tryPlace(sh, inst)
			}
		}
		if !placed {
			unplaced = append(unplaced, inst.part)
		}
	}

	result := model.NestingResult{Unplaced: unplaced}
	for i, sh := range sheets {
		sh.layout.Index = i
		result.Sheets = append(result.Sheets, sh.layout)
	}
	return result
}

// openSheetFor picks a sheet for the instance that fit no open sheet. It
// never consumes stock the instance cannot use: an oversized part comes
// back with a nil sheet and lands in Unplaced.
func (n *Nester) openSheetFor(inst instance, remaining []instance, pool []model.StockSheet, unlimited bool) (*openSheet, []model.StockSheet) {
	if unlimited {
		stock := model.StockSheet{
			Width:    n.Config.SheetWidth,
			Length:   n.Config.SheetLength,
			Quantity: 1,
			Grain:    model.GrainNone,
		}
		sh := n.newOpenSheet(stock, inst.part)
		if !n.fitsFresh(sh, inst) {
			return nil, pool
		}
		return sh, pool
	}

	idx := n.selectStock(pool, remaining, inst)
	if idx < 0 {
		return nil, pool
	}
	stock := pool[idx]
	pool = append(pool[:idx], pool[idx+1:]...)
	return n.newOpenSheet(stock, inst.part), pool
}

func (n *Nester) newOpenSheet(stock model.StockSheet, ref model.Part) *openSheet {
	material := stock.Material
	if material == "" {
		material = ref.Material
	}
	return &openSheet{
		stock:  stock,
		packer: newPacker(freeRectsFor(stock.Width, stock.Length, n.Config.EdgeMargin, n.Exclusions), n.Config.Kerf),
		layout: model.SheetLayout{
			Material:  material,
			Thickness: ref.Thickness,
			Width:     stock.Width,
			Length:    stock.Length,
		},
	}
}

// allowedOrientations combines the grain constraint with the rotation
// switch. Grain is hard: a part whose grain cannot line up is simply not
// placeable in that orientation.
func (n *Nester) allowedOrientations(part model.Part, stock model.StockSheet) (normal, rotated bool) {
	normal, rotated = model.CanPlaceWithGrain(part.Grain, stock.Grain)
	if !n.Config.AllowRotation {
		rotated = false
	}
	return normal, rotated
}

func (n *Nester) fitsFresh(sh *openSheet, inst instance) bool {
	canN, canR := n.allowedOrientations(inst.part, sh.stock)
	if canN && sh.packer.bestFit(inst.part.Width, inst.part.Height) >= 0 {
		return true
	}
	if canR && sh.packer.bestFit(inst.part.Height, inst.part.Width) >= 0 {
		return true
	}
	return false
}

// tryPlace attempts both orientations of an instance on one sheet,
// honoring the orientation hint and the grain and rotation constraints.
func (n *Nester) tryPlace(sh *openSheet, inst instance) bool {
	p := inst.part
	canN, canR := n.allowedOrientations(p, sh.stock)
	if !canN && !canR {
		return false
	}

	tryNormal := func() bool {
		ok, x, y := sh.packer.insert(p.Width, p.Height)
		if ok {
			n.record(sh, inst, x, y, false)
		}
		return ok
	}
	tryRotated := func() bool {
		ok, x, y := sh.packer.insert(p.Height, p.Width)
		if ok {
			n.record(sh, inst, x, y, true)
		}
		return ok
	}

	switch inst.orient {
	case orientRotatedFirst:
		if canR && tryRotated() {
			return true
		}
		return canN && tryNormal()
	case orientNormalFirst:
		if canN && tryNormal() {
			return true
		}
		return canR && tryRotated()
	default:
		// Compare both orientations and commit to the tighter fit.
		if canN && canR && p.Width != p.Height {
			nf := sh.packer.bestFit(p.Width, p.Height)
			rf := sh.packer.bestFit(p.Height, p.Width)
			if rf >= 0 && (nf < 0 || rf < nf) {
				return tryRotated()
			}
			if nf >= 0 {
				return tryNormal()
			}
			return false
		}
		if canN && tryNormal() {
			return true
		}
		return canR && tryRotated()
	}
}

func (n *Nester) record(sh *openSheet, inst instance, x, y float64, rotated bool) {
	sh.layout.Placements = append(sh.layout.Placements, model.Placement{
		ID:      inst.placeID,
		Part:    inst.part,
		X:       x,
		Y:       y,
		Rotated: rotated,
	})
}

// selectStock finds the pool index of the best stock for the triggering
// instance. With several candidate sizes it trial-packs the remaining
// instances on each distinct size and keeps the one with the highest
// material efficiency, so small jobs do not burn oversized sheets.
func (n *Nester) selectStock(pool []model.StockSheet, remaining []instance, trigger instance) int {
	var candidates []int
	for i, stock := range pool {
		if n.fitsFresh(n.newOpenSheet(stock, trigger.part), trigger) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	// Identical sizes pack identically, so trial each size once.
	type sizeKey struct{ w, l float64 }
	seen := make(map[sizeKey]bool)
	var unique []int
	for _, idx := range candidates {
		key := sizeKey{pool[idx].Width, pool[idx].Length}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, idx)
		}
	}

	bestIdx := -1
	bestScore := -1.0
	for _, idx := range unique {
		stock := pool[idx]
		sh := n.newOpenSheet(stock, trigger.part)

		placedArea := 0.0
		for _, inst := range remaining {
			canN, canR := n.allowedOrientations(inst.part, stock)
			done := false
			if canN {
				if ok, _, _ := sh.packer.insert(inst.part.Width, inst.part.Height); ok {
					placedArea += inst.part.Area()
					done = true
				}
			}
			if !done && canR {
				if ok, _, _ := sh.packer.insert(inst.part.Height, inst.part.Width); ok {
					placedArea += inst.part.Area()
				}
			}
		}

		total := stock.Width * stock.Length
		if total == 0 {
			continue
		}
		if eff := placedArea / total; eff > bestScore {
			bestScore = eff
			bestIdx = idx
		}
	}

	if bestIdx < 0 {
		return candidates[0]
	}
	return bestIdx
}
