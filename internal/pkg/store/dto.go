package store

// DTO is the write-side shape of a row. Fields tagged `db` become columns;
// ToModel builds the read model once the database has assigned an id.
type DTO interface {
	ToModel(id int) any
}
