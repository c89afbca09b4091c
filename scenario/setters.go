package scenario

// SetName returns an UpdateSetter that sets the scenario's name.
func SetName(name string) UpdateSetter {
	return func(s *Scenario) error {
		if name == "" {
			return ErrInvalidScenarioName
		}
		s.Name = name
		return nil
	}
}

// SetDescription returns an UpdateSetter that sets the scenario's description.
func SetDescription(description string) UpdateSetter {
	return func(s *Scenario) error {
		s.Description = description
		return nil
	}
}
