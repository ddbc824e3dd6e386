// Package blocks implements the falling-blocks grid engine.
//
// An [Engine] owns one [Grid] of [Cell] values and a generation counter.
// Cells cycle Empty -> Blue -> Red -> Green when toggled. Blue and Red
// cells fall one row per sweep until blocked, then come to rest; Green
// cells never move.
//
// Each call to [Engine.NextGeneration] runs five phases in order:
//
//	1. green spawn on the top row
//	2. green floor enforcement on the bottom row
//	3. fall/settle sweep, bottom to top
//	4. blue/red spawn on the top row
//	5. recolor jitter of resting blocks
//
// All probability gates come from [Rules] and every draw goes through the
// [Rand] given to [New], so tests can script the outcome.
//
// # Example
//
//	e := blocks.New(20, 10, blocks.NewRand(42))
//	e.LoadPattern()
//	for i := 0; i < 100; i++ {
//	    e.NextGeneration()
//	}
//	fmt.Print(e.Grid())
//
// # Thread Safety
//
// Engine instances are NOT safe for concurrent use.
package blocks
