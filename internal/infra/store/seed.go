package store

import "github.com/boddenberg/lessence-studio-bfa/internal/domain"

// SeedServices returns the catalog written on first run.
func SeedServices() []domain.Service {
	return []domain.Service{
		{ID: "1", Name: "Corte L'essence Signature", Description: "Corte personalizado com visagismo, lavagem relaxante e finalização premium.", Price: 180, DurationMinutes: 60, Category: domain.CategoryHair},
		{ID: "2", Name: "Coloração Global", Description: "Coloração completa da raiz às pontas com produtos de alta performance e proteção.", Price: 350, DurationMinutes: 120, Category: domain.CategoryHair},
		{ID: "3", Name: "Manicure Spa", Description: "Tratamento completo para mãos, inclui esfoliação, hidratação e esmaltação.", Price: 65, DurationMinutes: 45, Category: domain.CategoryNails},
		{ID: "4", Name: "Pedicure Relaxante", Description: "Cuidado especial para os pés com massagem relaxante e pedras quentes.", Price: 75, DurationMinutes: 60, Category: domain.CategoryNails},
		{ID: "5", Name: "Limpeza de Pele Profunda", Description: "Higienização profunda, extração de comedões e máscara calmante de ouro.", Price: 220, DurationMinutes: 90, Category: domain.CategorySkin},
		{ID: "6", Name: "Massagem Relaxante", Description: "Técnica sueca para alívio de tensões e relaxamento total do corpo.", Price: 180, DurationMinutes: 60, Category: domain.CategorySpa},
	}
}

// SeedProfessionals returns the staff written on first run.
func SeedProfessionals() []domain.Professional {
	return []domain.Professional{
		{ID: "1", Name: "Ana Souza", Role: "Hairstylist Senior"},
		{ID: "2", Name: "Beatriz Lima", Role: "Nail Designer"},
		{ID: "3", Name: "Carla Dias", Role: "Esteticista"},
		{ID: "4", Name: "Daniela Rocha", Role: "Massoterapeuta"},
	}
}
