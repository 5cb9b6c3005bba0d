package simconfig

import "testing"

func TestDefaultExchangeRates(t *testing.T) {
	r := DefaultExchangeRates()
	if r.EuroPerEnergy.Denominator == 0 || r.MicroCCDPerEuro.Denominator == 0 {
		t.Fatal("default rates must not have a zero denominator")
	}
}

func TestDecodePreset(t *testing.T) {
	doc := []byte(`
name = "testnet"

[exchange_rates.euro_per_energy]
numerator = 1
denominator = 50000

[exchange_rates.micro_ccd_per_euro]
numerator = 500000000
denominator = 1

[energy]
base_interrupt_cost = 200
byte_per_interrupt_cost = 1
interpreter_to_chain_div = 1000
`)
	p, err := DecodePreset(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "testnet" {
		t.Errorf("got name %q", p.Name)
	}
	if p.ExchangeRates.EuroPerEnergy.Denominator != 50000 {
		t.Errorf("got denominator %d", p.ExchangeRates.EuroPerEnergy.Denominator)
	}
	if p.Energy.BaseInterruptCost != 200 {
		t.Errorf("got base cost %d", p.Energy.BaseInterruptCost)
	}
}
