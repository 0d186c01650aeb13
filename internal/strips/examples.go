package strips

import (
	"fmt"
	"slices"
	"strings"
)

var boolean = []string{False, True}

// DeliveryDomain is the coffee and mail delivery robot domain.
//
// The robot moves clockwise (mc_*) or counterclockwise (mcc_*) between the
// coffee shop (cs), office (off), lab, and mail room (mr). It can pick up
// coffee (puc) and deliver it (dc), and pick up (pum) and deliver (dm) mail.
//
// Features: RLoc (robot location), RHC (robot has coffee), SWC (Sam wants
// coffee), MW (mail waiting), RHM (robot has mail).
func DeliveryDomain() *Domain {
	return &Domain{
		Features: map[string][]string{
			"RLoc": {"cs", "off", "lab", "mr"},
			"RHC":  boolean,
			"SWC":  boolean,
			"MW":   boolean,
			"RHM":  boolean,
		},
		Actions: []Action{
			NewAction("mc_cs", Assignment{"RLoc": "cs"}, Assignment{"RLoc": "off"}),
			NewAction("mc_off", Assignment{"RLoc": "off"}, Assignment{"RLoc": "lab"}),
			NewAction("mc_lab", Assignment{"RLoc": "lab"}, Assignment{"RLoc": "mr"}),
			NewAction("mc_mr", Assignment{"RLoc": "mr"}, Assignment{"RLoc": "cs"}),
			NewAction("mcc_cs", Assignment{"RLoc": "cs"}, Assignment{"RLoc": "mr"}),
			NewAction("mcc_off", Assignment{"RLoc": "off"}, Assignment{"RLoc": "cs"}),
			NewAction("mcc_lab", Assignment{"RLoc": "lab"}, Assignment{"RLoc": "off"}),
			NewAction("mcc_mr", Assignment{"RLoc": "mr"}, Assignment{"RLoc": "lab"}),
			NewAction("puc", Assignment{"RLoc": "cs", "RHC": False}, Assignment{"RHC": True}),
			NewAction("dc", Assignment{"RLoc": "off", "RHC": True}, Assignment{"RHC": False, "SWC": False}),
			NewAction("pum", Assignment{"RLoc": "mr", "MW": True}, Assignment{"RHM": True, "MW": False}),
			NewAction("dm", Assignment{"RLoc": "off", "RHM": True}, Assignment{"RHM": False}),
		},
	}
}

// DeliveryProblem returns delivery problem 0, 1, or 2. All start in the lab
// with mail waiting and Sam wanting coffee:
//
//	0: get to the office
//	1: Sam no longer wants coffee
//	2: Sam has coffee, and the mail is picked up and delivered
func DeliveryProblem(n int) (*Problem, error) {
	initial := Assignment{"RLoc": "lab", "MW": True, "SWC": True, "RHC": False, "RHM": False}
	var goal Assignment
	switch n {
	case 0:
		goal = Assignment{"RLoc": "off"}
	case 1:
		goal = Assignment{"SWC": False}
	case 2:
		goal = Assignment{"SWC": False, "MW": False, "RHM": False}
	default:
		return nil, fmt.Errorf("unknown delivery problem %d (want 0, 1, or 2)", n)
	}
	return &Problem{
		Name:    fmt.Sprintf("delivery%d", n),
		Domain:  DeliveryDomain(),
		Initial: initial,
		Goal:    goal,
	}, nil
}

// Table is the pseudo-block every block can be put on.
const Table = "table"

// On names the feature holding what block x is on.
func On(x string) string { return x + "_is_on" }

// Clear names the boolean feature that nothing is on x.
func Clear(x string) string { return "clear_" + x }

// Move names the action moving x from y to z.
func Move(x, y, z string) string { return "move_" + x + "_from_" + y + "_to_" + z }

// BlocksWorld builds the blocks-world domain for the given block names.
func BlocksWorld(blocks ...string) (*Domain, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("blocks world needs at least one block")
	}
	blocks = slices.Clone(blocks)
	slices.Sort(blocks)
	if slices.Contains(blocks, Table) {
		return nil, fmt.Errorf("%q is reserved", Table)
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i] == blocks[i-1] {
			return nil, fmt.Errorf("duplicate block %q", blocks[i])
		}
	}
	for _, b := range blocks {
		if b == "" || strings.ContainsAny(b, " _") {
			return nil, fmt.Errorf("invalid block name %q", b)
		}
	}
	withTable := append(slices.Clone(blocks), Table)

	d := &Domain{Features: make(map[string][]string)}
	for _, x := range blocks {
		var on []string
		for _, y := range withTable {
			if y != x {
				on = append(on, y)
			}
		}
		d.Features[On(x)] = on
	}
	for _, x := range withTable {
		d.Features[Clear(x)] = boolean
	}

	for _, x := range blocks {
		for _, y := range withTable {
			if y == x {
				continue
			}
			for _, z := range blocks {
				if z == x || z == y {
					continue
				}
				d.Actions = append(d.Actions, NewAction(Move(x, y, z),
					Assignment{On(x): y, Clear(x): True, Clear(z): True},
					Assignment{On(x): z, Clear(y): True, Clear(z): False}))
			}
			if y != Table {
				d.Actions = append(d.Actions, NewAction(Move(x, y, Table),
					Assignment{On(x): y, Clear(x): True},
					Assignment{On(x): Table, Clear(y): True}))
			}
		}
	}
	return d, nil
}

// Blocks1 has a on the table and b on c; the goal is c on a on b.
func Blocks1() *Problem {
	dom, _ := BlocksWorld("a", "b", "c")
	return &Problem{
		Name:   "blocks1",
		Domain: dom,
		Initial: Assignment{
			On("a"): Table, Clear("a"): True,
			On("b"): "c", Clear("b"): True,
			On("c"): Table, Clear("c"): False,
		},
		Goal: Assignment{On("a"): "b", On("c"): "a"},
	}
}

// tower4 is the tower a on b on c on d on the table.
func tower4() Assignment {
	return Assignment{
		Clear("a"): True, On("a"): "b",
		Clear("b"): False, On("b"): "c",
		Clear("c"): False, On("c"): "d",
		Clear("d"): False, On("d"): Table,
	}
}

// Blocks2 inverts the four-block tower.
func Blocks2() *Problem {
	dom, _ := BlocksWorld("a", "b", "c", "d")
	return &Problem{
		Name:    "blocks2",
		Domain:  dom,
		Initial: tower4(),
		Goal:    Assignment{On("d"): "c", On("c"): "b", On("b"): "a"},
	}
}

// Blocks3 rebuilds the four-block tower as d on a on b on c.
func Blocks3() *Problem {
	dom, _ := BlocksWorld("a", "b", "c", "d")
	return &Problem{
		Name:    "blocks3",
		Domain:  dom,
		Initial: tower4(),
		Goal:    Assignment{On("d"): "a", On("a"): "b", On("b"): "c"},
	}
}

// Problems returns the named example problems.
func Problems() map[string]func() *Problem {
	delivery := func(n int) func() *Problem {
		return func() *Problem {
			p, _ := DeliveryProblem(n)
			return p
		}
	}
	return map[string]func() *Problem{
		"delivery0": delivery(0),
		"delivery1": delivery(1),
		"delivery2": delivery(2),
		"blocks1":   Blocks1,
		"blocks2":   Blocks2,
		"blocks3":   Blocks3,
	}
}
