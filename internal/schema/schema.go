// Package schema holds the static description of the ACME sales database
// that the completion model reasons about. The service never introspects
// the live database; this text is the only schema knowledge it has.
package schema

// DatabaseDescription is the short label served by the table listing.
const DatabaseDescription = "Base de datos de ventas ACME"

// Descriptor enumerates every table, column, key and relationship the
// model may reference. It is prose, not DDL, and must stay in sync with
// the deployed database by hand.
const Descriptor = `
Base de datos MySQL llamada 'railway' con las siguientes tablas:

1. clientes (Num_Clie, Empresa, Rep_Clie, Limite_Credito)
   - Num_Clie: identificador unico del cliente (PK)
   - Empresa: nombre de la empresa cliente
   - Rep_Clie: representante asignado (FK -> repventas.Num_Empl)
   - Limite_Credito: limite de credito en dolares

2. oficinas (Oficina, Ciudad, Region, Dir, Objetivo, Ventas)
   - Oficina: codigo de la oficina (PK)
   - Ciudad, Region: ubicacion
   - Dir: director (FK -> repventas.Num_Empl)
   - Objetivo: cuota objetivo, Ventas: ventas actuales

3. repventas (Num_Empl, Nombre, Edad, Oficina_Rep, Titulo, Contrato, Director, Cuota, Ventas)
   - Num_Empl: numero de empleado (PK)
   - Nombre: nombre completo
   - Oficina_Rep: oficina donde trabaja (FK -> oficinas.Oficina)
   - Cuota: cuota asignada, Ventas: ventas realizadas

4. pedidos (Num_Pedido, Fecha_Pedido, Clie, Rep, Fab, Producto, Cant, Importe)
   - Num_Pedido: numero de pedido (PK)
   - Clie: cliente (FK -> clientes.Num_Clie)
   - Rep: representante (FK -> repventas.Num_Empl)
   - Fab + Producto: producto (FK -> productos.Id_Fab + Id_Producto)
   - Cant: cantidad, Importe: monto total

5. productos (Id_Fab, Id_Producto, Descripcion, Precio, Costo, Existencias)
   - Id_Fab + Id_Producto: clave compuesta (PK)
   - Descripcion: nombre del producto
   - Precio: precio de venta, Costo: costo de compra
   - Existencias: stock disponible

Relaciones:
- clientes.Rep_Clie -> repventas.Num_Empl
- repventas.Oficina_Rep -> oficinas.Oficina
- pedidos.Clie -> clientes.Num_Clie
- pedidos.Rep -> repventas.Num_Empl
- pedidos.Fab + pedidos.Producto -> productos.Id_Fab + productos.Id_Producto
`

var tableNames = []string{"clientes", "oficinas", "repventas", "pedidos", "productos"}

// TableNames returns the fixed table list. Callers get a copy so the
// package-level slice stays immutable.
func TableNames() []string {
	names := make([]string, len(tableNames))
	copy(names, tableNames)
	return names
}
