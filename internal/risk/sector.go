package risk

import (
	"strings"

	"cashflow/internal/domain"
)

type SectorProperties struct {
	RiskMultiplier   float64 `json:"riskMultiplier"`
	ReturnMultiplier float64 `json:"returnMultiplier"`
	Volatility       float64 `json:"volatility"`
}

var neutralSector = SectorProperties{RiskMultiplier: 1.0, ReturnMultiplier: 1.0, Volatility: 0.1}

var sectorTable = map[domain.Sector]SectorProperties{
	domain.SectorTechnology:         {1.5, 1.3, 0.2},
	domain.SectorHealthcare:         {1.2, 1.1, 0.12},
	domain.SectorRealEstate:         {1.0, 1.05, 0.08},
	domain.SectorFinance:            {1.1, 1.0, 0.1},
	domain.SectorEnergy:             {1.3, 1.15, 0.15},
	domain.SectorConsumerGoods:      {0.9, 1.0, 0.07},
	domain.SectorUtilities:          {0.6, 0.9, 0.03},
	domain.SectorTelecommunications: {0.8, 0.95, 0.06},
	domain.SectorIndustrials:        {1.0, 1.05, 0.09},
	domain.SectorMaterials:          {1.2, 1.1, 0.13},
}

var sectorKeywords = map[domain.Sector][]string{
	domain.SectorTechnology:         {"tech", "software", "cloud", "computer", "digital", "robot", "internet", "blockchain", "bitcoin", "crypto"},
	domain.SectorHealthcare:         {"health", "hospital", "clinic", "pharma", "medical", "biotech", "dental"},
	domain.SectorRealEstate:         {"property", "rental", "apartment", "condo", "duplex", "house", "land", "real estate"},
	domain.SectorFinance:            {"bank", "fund", "insurance", "credit", "mortgage", "finance"},
	domain.SectorEnergy:             {"oil", "gas", "solar", "wind", "energy", "power"},
	domain.SectorConsumerGoods:      {"grocery", "retail", "food", "restaurant", "clothing", "cafe"},
	domain.SectorUtilities:          {"utility", "water", "electric", "sewage"},
	domain.SectorTelecommunications: {"telecom", "cell", "tower", "wireless", "broadband", "network"},
	domain.SectorIndustrials:        {"factory", "manufacturing", "logistics", "auto", "machinery", "shipping"},
	domain.SectorMaterials:          {"steel", "mining", "lumber", "chemical", "metal", "gold"},
}

// AssignSector keyword-matches the name in domain.Sectors order, falling back
// on the investment type.
func AssignSector(inv domain.Investment) domain.Sector {
	name := strings.ToLower(inv.Name)
	for _, sector := range domain.Sectors {
		for _, kw := range sectorKeywords[sector] {
			if strings.Contains(name, kw) {
				return sector
			}
		}
	}
	switch inv.Type {
	case domain.TypeCrypto:
		return domain.SectorTechnology
	case domain.TypeBusiness:
		return domain.SectorConsumerGoods
	default:
		return domain.SectorFinance
	}
}

func SectorPropertiesFor(sector domain.Sector) SectorProperties {
	if p, ok := sectorTable[sector]; ok {
		return p
	}
	return neutralSector
}
