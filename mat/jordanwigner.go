package mat

// JordanWigner returns the annihilation operators c_0, ..., c_{n-1} as 2^n × 2^n matrices.
// Row and column indices are occupation patterns, bit p being mode p, and
//
//	c_p = Z_0 ⊗ ... ⊗ Z_{p-1} ⊗ a_p ⊗ 1 ⊗ ... ⊗ 1
//
// in the order of increasing mode index.
func JordanWigner(n int) []*COO {
	a, z, identity := M(Annihilation), M(PauliZ), COOIdentity(2)
	ops := make([]*COO, 0, n)
	for p := range n {
		c := M([][]complex128{{1}})
		// Kron puts its left operand on the most significant bit, so build from the highest mode down.
		for m := n - 1; m >= 0; m-- {
			switch {
			case m > p:
				c.Kron(identity)
			case m == p:
				c.Kron(a)
			default:
				c.Kron(z)
			}
		}
		ops = append(ops, c)
	}
	return ops
}
