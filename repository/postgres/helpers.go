package postgres

func nullInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
