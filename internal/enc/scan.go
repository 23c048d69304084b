package enc

// Coefficient scan types.
const (
	scanDiag = 0
	scanHor  = 1
	scanVer  = 2
)

type pos struct{ x, y uint8 }

// scanOrder[log2][scan] lists the positions of a (1<<log2)² grid in coding
// order, for log2 in 0..3. Sub-block grids of a 32x32 TB use log2 3.
var scanOrder [4][3][]pos

func init() {
	for log2 := 0; log2 < 4; log2++ {
		n := 1 << log2
		scanOrder[log2][scanDiag] = diagScan(n)
		hor := make([]pos, 0, n*n)
		ver := make([]pos, 0, n*n)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				hor = append(hor, pos{uint8(b), uint8(a)})
				ver = append(ver, pos{uint8(a), uint8(b)})
			}
		}
		scanOrder[log2][scanHor] = hor
		scanOrder[log2][scanVer] = ver
	}
}

// diagScan returns the up-right diagonal scan of an n×n grid.
func diagScan(n int) []pos {
	out := make([]pos, 0, n*n)
	x, y := 0, 0
	for len(out) < n*n {
		for y >= 0 {
			if x < n && y < n {
				out = append(out, pos{uint8(x), uint8(y)})
			}
			y--
			x++
		}
		y = x
		x = 0
	}
	return out
}
