package postgresql

// migrations returns the versioned schema migrations. Foreign keys are
// NO ACTION on delete: deletion policy is decided by the surrounding
// application, never by the storage layer.
func migrations() map[int]string {
	return map[int]string{
		1: `
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_roles (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE NO ACTION,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_nodes (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE NO ACTION,
			role_id TEXT REFERENCES workflow_roles(id) ON DELETE NO ACTION,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'intermediate',
			task_type TEXT NOT NULL DEFAULT 'user',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_node_paths (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE NO ACTION,
			source_node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			target_node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			name TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_condition_groups (
			id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_conditions (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES workflow_condition_groups(id) ON DELETE NO ACTION,
			operand1 TEXT NOT NULL,
			operator TEXT NOT NULL,
			operand2 TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_actions (
			id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			config JSONB NOT NULL DEFAULT '{}',
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_outcomes (
			id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			code TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_instances (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE NO ACTION,
			entity_id TEXT NOT NULL,
			entity_name TEXT NOT NULL DEFAULT '',
			entity_detail TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'processing',
			user_id TEXT NOT NULL,
			start_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			end_date TIMESTAMP WITH TIME ZONE
		);

		CREATE TABLE IF NOT EXISTS workflow_tasks (
			id TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL REFERENCES workflow_instances(id) ON DELETE NO ACTION,
			node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			outcome_id TEXT REFERENCES workflow_outcomes(id) ON DELETE NO ACTION,
			user_id TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'processing',
			cancel_trigger TEXT NOT NULL DEFAULT 'user',
			start_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			end_date TIMESTAMP WITH TIME ZONE
		);

		CREATE TABLE IF NOT EXISTS workflow_roles_users (
			id TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL REFERENCES workflow_instances(id) ON DELETE NO ACTION,
			role_id TEXT NOT NULL REFERENCES workflow_roles(id) ON DELETE NO ACTION,
			user_id TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS workflow_results (
			id TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL REFERENCES workflow_instances(id) ON DELETE NO ACTION,
			node_id TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE NO ACTION,
			result TEXT NOT NULL DEFAULT '',
			datatype TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_workflow_nodes_workflow ON workflow_nodes(workflow_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_node_paths_source ON workflow_node_paths(workflow_id, source_node_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_condition_groups_node ON workflow_condition_groups(node_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_actions_node ON workflow_actions(node_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_tasks_instance ON workflow_tasks(instance_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_roles_users_instance ON workflow_roles_users(instance_id, role_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_results_instance ON workflow_results(instance_id, node_id);
		`,
	}
}
