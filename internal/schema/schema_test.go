package schema

import (
	"strings"
	"testing"
)

func TestTableNamesReturnsFixedList(t *testing.T) {
	names := TableNames()
	want := []string{"clientes", "oficinas", "repventas", "pedidos", "productos"}
	if len(names) != len(want) {
		t.Fatalf("len(TableNames()) = %d, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("TableNames()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestTableNamesReturnsCopy(t *testing.T) {
	names := TableNames()
	names[0] = "mutated"
	if TableNames()[0] != "clientes" {
		t.Fatal("TableNames() should not expose the package-level slice")
	}
}

func TestDescriptorMentionsEveryTable(t *testing.T) {
	for _, name := range TableNames() {
		if !strings.Contains(Descriptor, name) {
			t.Fatalf("Descriptor is missing table %q", name)
		}
	}
	for _, relation := range []string{
		"clientes.Rep_Clie -> repventas.Num_Empl",
		"repventas.Oficina_Rep -> oficinas.Oficina",
		"pedidos.Clie -> clientes.Num_Clie",
	} {
		if !strings.Contains(Descriptor, relation) {
			t.Fatalf("Descriptor is missing relation %q", relation)
		}
	}
}
