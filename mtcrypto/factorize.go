package mtcrypto

import (
	"errors"
	"math/big"
	"math/rand"
)

// ErrFactorizeFailed is returned when Factorize could not find a
// nontrivial factor of pq within its retry budget; this should not
// happen for protocol-sized (two-prime, 63-bit-or-smaller) products.
var ErrFactorizeFailed = errors.New("mtcrypto: failed to factorize pq")

// Factorize splits the protocol's 64-bit pq into its two prime factors
// p < q using Pollard's rho algorithm with Brent's cycle-detection
// improvement — sufficient for the protocol-sized products of two
// primes (each up to 32 bits) the handshake uses; it is not a
// general-purpose factorizer.
func Factorize(pq uint64) (p, q uint64, err error) {
	if pq%2 == 0 {
		return 2, pq / 2, nil
	}

	n := new(big.Int).SetUint64(pq)
	d := pollardBrent(n)
	if d == nil {
		return 0, 0, ErrFactorizeFailed
	}

	a := d.Uint64()
	b := pq / a
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}

func pollardBrent(n *big.Int) *big.Int {
	if n.Bit(0) == 0 {
		return big.NewInt(2)
	}

	one := big.NewInt(1)
	rng := rand.New(rand.NewSource(1))

	for attempt := 0; attempt < 64; attempt++ {
		c := randBigInt(rng, n)
		y := randBigInt(rng, n)
		m := big.NewInt(128)

		g, r, q := big.NewInt(1), big.NewInt(1), big.NewInt(1)
		x, ys := new(big.Int), new(big.Int)

		tmp := new(big.Int)

		for g.Cmp(one) == 0 {
			x.Set(y)
			for i := big.NewInt(0); i.Cmp(r) < 0; i.Add(i, one) {
				y.Mul(y, y)
				y.Add(y, c)
				y.Mod(y, n)
			}

			k := big.NewInt(0)
			for k.Cmp(r) < 0 && g.Cmp(one) == 0 {
				ys.Set(y)

				limit := new(big.Int).Sub(r, k)
				if limit.Cmp(m) > 0 {
					limit.Set(m)
				}

				for i := big.NewInt(0); i.Cmp(limit) < 0; i.Add(i, one) {
					y.Mul(y, y)
					y.Add(y, c)
					y.Mod(y, n)

					tmp.Sub(x, y)
					tmp.Abs(tmp)
					q.Mul(q, tmp)
					q.Mod(q, n)
				}

				g.GCD(nil, nil, q, n)
				k.Add(k, m)
			}

			r.Mul(r, big.NewInt(2))
		}

		if g.Cmp(n) == 0 {
			for {
				ys.Mul(ys, ys)
				ys.Add(ys, c)
				ys.Mod(ys, n)

				tmp.Sub(x, ys)
				tmp.Abs(tmp)
				if tmp.Sign() == 0 {
					break
				}
				g.GCD(nil, nil, tmp, n)
				if g.Cmp(one) != 0 {
					break
				}
			}
		}

		if g.Cmp(one) != 0 && g.Cmp(n) != 0 {
			return g
		}
	}

	return nil
}

func randBigInt(rng *rand.Rand, n *big.Int) *big.Int {
	v := new(big.Int).SetUint64(rng.Uint64())
	v.Mod(v, n)
	if v.Sign() == 0 {
		v.SetInt64(1)
	}
	return v
}
