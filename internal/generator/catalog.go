package generator

import "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"

// DefaultCatalog returns the five formwork element families the generator
// draws from. A fresh slice is returned on every call.
func DefaultCatalog() []domain.ElementTemplate {
	return []domain.ElementTemplate{
		{Type: "Metro-Pier-Cap", Length: 2.4, Width: 1.2, Material: domain.MaterialSteel},
		{Type: "Tower-Column", Length: 3.0, Width: 0.6, Material: domain.MaterialAluform},
		{Type: "Podium-Slab", Length: 1.8, Width: 1.8, Material: domain.MaterialPlywood},
		{Type: "Retaining-Wall", Length: 2.4, Width: 2.4, Material: domain.MaterialAluform},
		{Type: "Bridge-Girder", Length: 4.0, Width: 0.4, Material: domain.MaterialSteel},
	}
}
