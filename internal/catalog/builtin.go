package catalog

import f "github.com/talgya/apery/internal/formula"

// Speed of light and elementary charge are exact in SI.
const (
	speedOfLight     = "299792458"
	elementaryCharge = "1.602176634e-19"
	magneticScale    = "1e-7"
)

// z0 is the lattice impedance π⁴ + 4π² + ζ(3)/8.
func z0() f.Node {
	return f.Sum(f.Pow(f.Pi(), f.Int(4)), f.Mul(f.Int(4), f.Pow(f.Pi(), f.Int(2))), f.Div(f.Zeta(3), f.Int(8)))
}

// hbar returns e² / (4π·ε₀·α·c) with ε₀ = 1/(μ₀·c²) for the named μ₀ entry.
func hbar(mu0 string) f.Node {
	c := f.Lit(speedOfLight)
	eps0 := f.Div(f.Int(1), f.Mul(f.Var(mu0), f.Pow(c, f.Int(2))))
	alpha := f.Div(f.Int(1), f.Var("alpha_inverse_target"))
	return f.Div(
		f.Pow(f.Lit(elementaryCharge), f.Int(2)),
		f.Product(f.Int(4), f.Pi(), eps0, alpha, c),
	)
}

// Builtin returns the reference catalog of zeta and golden-ratio formulas.
func Builtin() Catalog {
	return Catalog{
		// Scalars: pure zeta topology.
		{
			Name:        "proton_electron_mass_ratio",
			Title:       "Proton-electron mass ratio μ",
			Formula:     f.Add(f.Mul(f.Int(6), f.Pow(f.Pi(), f.Int(5))), f.Div(f.Sub(f.Zeta(3), f.Int(1)), f.Int(6))),
			Reference:   "1836.15267343",
			Tolerance:   "1e-6",
			Uncertainty: "0.00000011",
		},
		{
			Name:        "dark_energy_density",
			Title:       "Dark energy density Ω_Λ",
			Formula:     f.Div(f.Pow(f.Pi(), f.Int(2)), f.Mul(f.Int(12), f.Zeta(3))),
			Reference:   "0.6847",
			Tolerance:   "0.01",
			Uncertainty: "0.0073",
		},
		{
			Name:        "alpha_inverse",
			Title:       "Inverse fine-structure constant α⁻¹",
			Formula:     f.SelfConsistent(z0(), f.Lit("1/4")),
			Reference:   "137.035999084",
			Tolerance:   "1e-6",
			Uncertainty: "0.000000021",
			Note:        "self-consistent root of x = Z₀ − 1/(4x)",
		},
		{
			Name:    "alpha_inverse_target",
			Title:   "Observed α⁻¹ (target)",
			Formula: f.Lit("137.035999084"),
		},
		{
			Name:    "spectral_impedance",
			Title:   "Spectral impedance residual α⁻¹ − 4π²",
			Formula: f.Sub(f.Var("alpha_inverse_target"), f.Mul(f.Int(4), f.Pow(f.Pi(), f.Int(2)))),
			Note:    "target minus geometric base",
		},

		// Forces and angles: tree-level geometry.
		{
			Name:        "ckm_gamma",
			Title:       "CKM angle γ (degrees)",
			Formula:     f.Degrees(f.Zeta(3)),
			Reference:   "71.1",
			Tolerance:   "0.06",
			Uncertainty: "4",
			Note:        "ζ(3) radians",
		},
		{
			Name:      "ckm_gamma_projection",
			Title:     "CKM angle γ, quasicrystal projection (degrees)",
			Formula:   f.Degrees(f.Arccos(f.Div(f.Div(f.Zeta(2), f.Zeta(3)), f.Pi()))),
			Reference: "68.7",
			Tolerance: "0.05",
		},
		{
			Name:      "strong_coupling",
			Title:     "Strong coupling α_s, tree level",
			Formula:   f.Div(f.Mul(f.Int(3), f.Zeta(3)), f.Pow(f.Pi(), f.Int(3))),
			Reference: "0.1179",
			Tolerance: "0.02",
		},
		{
			Name:      "strong_coupling_projection",
			Title:     "Strong coupling α_s, scaled by φ",
			Formula:   f.Product(f.Phi(), f.Div(f.Zeta(3), f.Zeta(2)), f.Lit("0.1")),
			Reference: "0.1179",
			Tolerance: "0.005",
		},
		{
			Name:    "inflation_efolds",
			Title:   "Inflation e-folds N_e",
			Formula: f.Product(f.Int(16), f.Pi(), f.Zeta(3)),
			Note:    "target range 50-60",
		},
		{
			Name:    "inflation_efolds_projection",
			Title:   "Inflation e-folds N_e, quasicrystal volume",
			Formula: f.Product(f.Phi(), f.Int(4), f.Pow(f.Pi(), f.Int(2)), f.Zeta(3)),
			Note:    "target range 50-60",
		},

		// Electroweak candidates.
		{
			Name:      "weak_mixing_angle",
			Title:     "Weak mixing angle sin²θ_W",
			Formula:   f.Sub(f.Lit("1/4"), f.Div(f.Zeta(3), f.Mul(f.Int(8), f.Pow(f.Pi(), f.Int(3))))),
			Reference: "0.23122",
			Tolerance: "0.0015",
		},
		{
			Name:      "higgs_self_coupling",
			Title:     "Higgs self-coupling λ",
			Formula:   f.Add(f.Lit("1/8"), f.Div(f.Zeta(3), f.Mul(f.Int(8), f.Pow(f.Pi(), f.Int(4))))),
			Reference: "0.12902",
			Tolerance: "0.0015",
		},
		{
			Name:      "koide_geometry",
			Title:     "Fermion generation scaling 1 − 1/(φ²π)",
			Formula:   f.Sub(f.Int(1), f.Div(f.Int(1), f.Mul(f.Pow(f.Phi(), f.Int(2)), f.Pi()))),
			Reference: "2/3",
			Tolerance: "0.15",
		},

		// Vacuum consistency: ħ from a standard and a ζ(2)-dense vacuum.
		{
			Name:      "vacuum_permeability",
			Title:     "Vacuum permeability μ₀ = 4π·10⁻⁷",
			Formula:   f.Product(f.Int(4), f.Pi(), f.Lit(magneticScale)),
			Reference: "1.25663706212e-6",
			Tolerance: "1e-9",
		},
		{
			Name:    "vacuum_permeability_dense",
			Title:   "Zeta-dense vacuum permeability μ₀·ζ(2)",
			Formula: f.Mul(f.Var("vacuum_permeability"), f.Zeta(2)),
		},
		{
			Name:      "hbar_screened",
			Title:     "Reduced Planck constant ħ, screened charge",
			Formula:   hbar("vacuum_permeability"),
			Reference: "1.054571817e-34",
			Tolerance: "1e-8",
		},
		{
			Name:      "hbar_dense",
			Title:     "Reduced Planck constant ħ, raw zeta vacuum",
			Formula:   hbar("vacuum_permeability_dense"),
			Reference: "1.054571817e-34",
			Tolerance: "1e-8",
		},
	}
}
